package advisory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
	"github.com/mamadbah2/herdfeed/pkg/clients/anthropic"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []models.HerdSnapshot
	text  string
	err   error
	block bool
}

func (f *fakeClient) GenerateAdvice(ctx context.Context, s models.HerdSnapshot) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var herd = models.HerdSnapshot{Count: 10, AvgWeight: 50, DistinctGroups: []string{"Grower"}}

func TestInitialTextIsPending(t *testing.T) {
	svc := NewService(&fakeClient{}, 0, time.Second, nil)
	if svc.Current() != PendingText {
		t.Fatalf("unexpected initial text %q", svc.Current())
	}
}

func TestTriggerStoresAdvice(t *testing.T) {
	fake := &fakeClient{text: "* **Weigh** weekly"}
	svc := NewService(fake, 0, time.Second, nil)
	defer svc.Close()

	svc.Trigger(herd)
	svc.Wait()

	if svc.Current() != "* **Weigh** weekly" {
		t.Fatalf("unexpected advice %q", svc.Current())
	}
}

func TestTriggerDebouncesBursts(t *testing.T) {
	fake := &fakeClient{text: "tip"}
	svc := NewService(fake, 50*time.Millisecond, time.Second, nil)
	defer svc.Close()

	for i := 1; i <= 3; i++ {
		svc.Trigger(models.HerdSnapshot{Count: i})
	}
	svc.Wait()

	if fake.callCount() != 1 {
		t.Fatalf("expected one call after a burst, got %d", fake.callCount())
	}
	if fake.calls[0].Count != 3 {
		t.Fatalf("the newest snapshot should win, got %+v", fake.calls[0])
	}
}

func TestFailureFallsBackAndLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewService(&fakeClient{err: errors.New("quota exceeded")}, 0, time.Second, zap.New(core))
	defer svc.Close()

	svc.Trigger(herd)
	svc.Wait()

	if svc.Current() != FallbackText {
		t.Fatalf("expected fallback, got %q", svc.Current())
	}
	if logs.FilterMessage("advisory generation failed, using fallback").Len() != 1 {
		t.Fatalf("failure should be logged once, got %v", logs.All())
	}
}

func TestTimeoutFallsBack(t *testing.T) {
	svc := NewService(&fakeClient{block: true}, 0, 20*time.Millisecond, nil)
	defer svc.Close()

	svc.Trigger(herd)
	svc.Wait()

	if svc.Current() != FallbackText {
		t.Fatalf("expected fallback after timeout, got %q", svc.Current())
	}
}

func TestEmptyHerdSkipsClient(t *testing.T) {
	fake := &fakeClient{text: "tip"}
	svc := NewService(fake, 0, time.Second, nil)
	defer svc.Close()

	svc.Trigger(models.HerdSnapshot{})
	svc.Wait()

	if svc.Current() != EmptyHerdText || fake.callCount() != 0 {
		t.Fatalf("empty herd should not call the client: %q %d", svc.Current(), fake.callCount())
	}
}

func TestNilClientAndBlankResponse(t *testing.T) {
	svc := NewService(nil, 0, time.Second, nil)
	svc.Trigger(herd)
	svc.Wait()
	if svc.Current() != FallbackText {
		t.Fatalf("nil client should use fallback, got %q", svc.Current())
	}
	svc.Close()

	blank := NewService(&fakeClient{}, 0, time.Second, nil)
	blank.Trigger(herd)
	blank.Wait()
	if blank.Current() != BlankText {
		t.Fatalf("blank response should use default tip, got %q", blank.Current())
	}
	blank.Close()
}

func TestCloseStopsPendingWork(t *testing.T) {
	fake := &fakeClient{text: "tip"}
	svc := NewService(fake, time.Hour, time.Second, nil)

	svc.Trigger(herd)
	svc.Close()
	svc.Trigger(herd)
	svc.Wait()

	if fake.callCount() != 0 || svc.Current() != PendingText {
		t.Fatalf("closed service must not refresh")
	}
}

func TestBlankReplyFromAnthropicUsesDefaultTip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	svc := NewService(anthropic.NewClientWithURL("k", srv.URL), 0, time.Second, nil)
	defer svc.Close()
	svc.Trigger(herd)
	svc.Wait()

	if svc.Current() != BlankText {
		t.Fatalf("expected default tip, got %q", svc.Current())
	}
}
