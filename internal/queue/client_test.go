package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/resys-shop/core/internal/config"
	"github.com/resys-shop/core/internal/models"
)

func TestDisabledClientIsSafe(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("new client with nil config: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected client disabled without config")
	}

	client, err = NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client with disabled config: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected client disabled when config says so")
	}

	// 未启用时投递为空操作，不得报错
	events := []models.DomainEvent{
		models.NewDomainEvent("order.created", 1, "order", 1, time.Now()),
	}
	if err := client.EnqueueDomainEvents(events); err != nil {
		t.Fatalf("enqueue on disabled client: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("expected nil client reported as disabled")
	}
}

func TestNotificationDispatchTaskPayload(t *testing.T) {
	occurred := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	event := models.DomainEvent{
		ID:         "evt-1",
		Name:       "payment.captured",
		OrderID:    7,
		EntityKind: "payment",
		EntityID:   3,
		OccurredAt: occurred,
	}

	task, err := NewNotificationDispatchTask(PayloadFromEvent(event))
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != TaskNotificationDispatch {
		t.Fatalf("unexpected task type: %s", task.Type())
	}

	var payload NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.EventID != "evt-1" || payload.Name != "payment.captured" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.OrderID != 7 || payload.EntityKind != "payment" || payload.EntityID != 3 {
		t.Fatalf("unexpected entity fields: %+v", payload)
	}
	if !payload.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected occurred_at: %v", payload.OccurredAt)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected redis addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("unexpected concurrency: %d", cfg.Concurrency)
	}
	if weight, ok := cfg.Queues[DefaultQueue]; !ok || weight != 1 {
		t.Fatalf("expected default queue weight 1, got %+v", cfg.Queues)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{
		Host:        "redis.internal",
		Port:        6380,
		Concurrency: 4,
		Queues:      map[string]int{"default": 5, "low": 1},
	})
	if opt.Addr != "redis.internal:6380" {
		t.Fatalf("unexpected redis addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 4 || cfg.Queues["default"] != 5 {
		t.Fatalf("unexpected server config: %d %+v", cfg.Concurrency, cfg.Queues)
	}
}
