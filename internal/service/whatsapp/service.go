package whatsapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdfeed/internal/config"
	"github.com/mamadbah2/herdfeed/internal/domain/models"
	client "github.com/mamadbah2/herdfeed/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrNoManager is returned when no manager number is configured.
var ErrNoManager = errors.New("no manager recipient configured")

// MessagingService describes the outbound notifications the app sends.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	NotifyManager(ctx context.Context, message string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// NotifyManager sends message to the configured farm manager.
func (s *MetaWhatsAppService) NotifyManager(ctx context.Context, message string) error {
	if s.cfg.ManagerID == "" {
		return ErrNoManager
	}
	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: s.cfg.ManagerID, Message: message})
}

// SendOutbound pushes a message to an arbitrary recipient.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.client.SendText(ctxWithTimeout, req.To, req.Message)
	if err != nil {
		return err
	}

	s.logger.Debug("outbound message accepted", zap.String("to", req.To), zap.String("message_id", id))
	return nil
}
