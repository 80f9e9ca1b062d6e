package worker

import (
	"context"
	"encoding/json"

	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/provider"
	"github.com/resys-shop/core/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
}

// handleNotificationDispatch 消费领域事件通知任务；投递目标（邮件、webhook）由下游接入，这里落结构化日志
func (c *Consumer) handleNotificationDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_unmarshal_failed", "error", err)
		return err
	}
	if payload.Name == "" || payload.OrderID == 0 {
		logger.Debugw("worker_notification_skip_invalid_payload", "name", payload.Name, "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_notification_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_notification_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	logger.Infow("domain_event_dispatched",
		"event_id", payload.EventID,
		"event", payload.Name,
		"order_id", order.ID,
		"order_number", order.Number,
		"order_state", order.State.String(),
		"entity_kind", payload.EntityKind,
		"entity_id", payload.EntityID,
		"occurred_at", payload.OccurredAt,
	)
	return nil
}
