package queue

import (
	"encoding/json"
	"time"

	"github.com/resys-shop/core/internal/constants"
	"github.com/resys-shop/core/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotificationDispatch 领域事件通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
)

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	EventID    string    `json:"event_id"`
	Name       string    `json:"name"`
	OrderID    uint      `json:"order_id"`
	EntityKind string    `json:"entity_kind"`
	EntityID   uint      `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}

// PayloadFromEvent 由领域事件构建任务载荷
func PayloadFromEvent(event models.DomainEvent) NotificationDispatchPayload {
	return NotificationDispatchPayload{
		EventID:    event.ID,
		Name:       event.Name,
		OrderID:    event.OrderID,
		EntityKind: event.EntityKind,
		EntityID:   event.EntityID,
		OccurredAt: event.OccurredAt,
	}
}
