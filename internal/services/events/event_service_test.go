package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

func TestPublishSyncDeliversToAllSubscribers(t *testing.T) {
	eventService := NewService(arbor.NewLogger())
	defer eventService.Close()

	var first, second int32
	err := eventService.Subscribe(interfaces.EventAssessmentCreated, func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&first, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	err = eventService.Subscribe(interfaces.EventAssessmentCreated, func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&second, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	event := interfaces.Event{
		Type:    interfaces.EventAssessmentCreated,
		Payload: map[string]interface{}{"assessment_id": "asmt-1"},
	}
	if err := eventService.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}

	if atomic.LoadInt32(&first) != 1 || atomic.LoadInt32(&second) != 1 {
		t.Errorf("expected both handlers called once, got %d and %d",
			atomic.LoadInt32(&first), atomic.LoadInt32(&second))
	}
}

func TestPublishSyncReportsHandlerErrors(t *testing.T) {
	eventService := NewService(arbor.NewLogger())
	defer eventService.Close()

	err := eventService.Subscribe(interfaces.EventAssessmentDeleted, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("handler broke")
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	err = eventService.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAssessmentDeleted})
	if err == nil {
		t.Error("expected error from failing handler")
	}
}

func TestPublishAsyncDelivers(t *testing.T) {
	eventService := NewService(arbor.NewLogger())
	defer eventService.Close()

	done := make(chan struct{})
	err := eventService.Subscribe(interfaces.EventRetentionPurgeDone, func(ctx context.Context, event interfaces.Event) error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := eventService.Publish(context.Background(), interfaces.Event{Type: interfaces.EventRetentionPurgeDone}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked within 2s")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	eventService := NewService(arbor.NewLogger())
	defer eventService.Close()

	if err := eventService.Publish(context.Background(), interfaces.Event{Type: interfaces.EventAssessmentUpdated}); err != nil {
		t.Errorf("Publish with no subscribers should not error, got: %v", err)
	}
	if err := eventService.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAssessmentUpdated}); err != nil {
		t.Errorf("PublishSync with no subscribers should not error, got: %v", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	eventService := NewService(arbor.NewLogger())
	defer eventService.Close()

	if err := eventService.Subscribe(interfaces.EventAssessmentCreated, nil); err == nil {
		t.Error("expected error subscribing nil handler")
	}
}

func TestPublishSyncRecoversPanickingHandler(t *testing.T) {
	eventService := NewService(arbor.NewLogger())
	defer eventService.Close()

	err := eventService.Subscribe(interfaces.EventAssessmentCreated, func(ctx context.Context, event interfaces.Event) error {
		panic("subscriber exploded")
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Must not crash the test process; the panic is recovered in the
	// goroutine wrapper and the publish completes.
	_ = eventService.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAssessmentCreated})
}
