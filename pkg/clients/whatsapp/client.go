package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdfeed/internal/config"
)

var (
	// ErrEmptyRecipient is returned when a message has nowhere to go.
	ErrEmptyRecipient = errors.New("recipient must not be empty")
	// ErrEmptyBody is returned for blank notifications.
	ErrEmptyBody = errors.New("message body must not be empty")
)

// Client delivers plain text notifications.
type Client interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIClient talks to the WhatsApp Cloud API messages endpoint.
type APIClient struct {
	http          *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	return &APIClient{
		http: resty.New().
			SetBaseURL(base+"/"+cfg.APIVersion).
			SetAuthToken(cfg.AccessToken).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type sendResult struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText posts body to one recipient and returns the message id Meta
// assigned, empty when none was reported.
func (c *APIClient) SendText(ctx context.Context, to, body string) (string, error) {
	switch {
	case strings.TrimSpace(to) == "":
		return "", ErrEmptyRecipient
	case strings.TrimSpace(body) == "":
		return "", ErrEmptyBody
	}

	var (
		result sendResult
		failed errorEnvelope
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(textMessage{MessagingProduct: "whatsapp", To: to, Type: "text", Text: textBody{Body: body}}).
		SetResult(&result).
		SetError(&failed).
		Post(c.phoneNumberID + "/messages")
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := failed.Error.Code
		if code == 0 {
			code = resp.StatusCode()
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, failed.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
