package calendar

import (
	"context"
	"encoding/json"
	"time"

	"go-hrportal/internal/events"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// LeaveLifecycleConsumer materializes calendar entries from approved
// leaves and removes them again when a cancellation goes through.
type LeaveLifecycleConsumer struct {
	reader  *kafka.Reader
	service Service
	logger  *zap.Logger
}

func NewLeaveLifecycleConsumer(
	broker string,
	groupID string,
	service Service,
	logger ...*zap.Logger,
) *LeaveLifecycleConsumer {
	l := zap.L().Named("calendar.consumer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.consumer")
	}

	return &LeaveLifecycleConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{broker},
			Topic:          events.LeaveLifecycleTopic,
			GroupID:        groupID,
			CommitInterval: time.Second,
			StartOffset:    kafka.FirstOffset,
		}),
		service: service,
		logger:  l,
	}
}

func (c *LeaveLifecycleConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("consume leave lifecycle failed", zap.Error(err))
				continue
			}

			if err := c.handle(ctx, msg.Value); err != nil {
				c.logger.Error("handle leave lifecycle event failed", zap.Error(err))
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("commit leave lifecycle event failed", zap.Error(err))
			}
		}
	}()
}

func (c *LeaveLifecycleConsumer) handle(ctx context.Context, value []byte) error {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		// Malformed payloads never become processable; log and move on.
		c.logger.Error("decode leave lifecycle event failed", zap.Error(err))
		return nil
	}

	switch envelope.EventType {
	case events.EventTypeLeaveApproved:
		var event events.LeaveApprovedEvent
		if err := json.Unmarshal(value, &event); err != nil {
			c.logger.Error("decode leave_approved event failed", zap.Error(err))
			return nil
		}
		if err := c.service.RecordApprovedLeave(ctx, event); err != nil {
			return err
		}
		c.logger.Info("calendar entry created from leave_approved event",
			zap.String("leave_request_id", event.LeaveRequestID),
		)
	case events.EventTypeLeaveCancelled:
		var event events.LeaveCancelledEvent
		if err := json.Unmarshal(value, &event); err != nil {
			c.logger.Error("decode leave_cancelled event failed", zap.Error(err))
			return nil
		}
		if err := c.service.RemoveCancelledLeave(ctx, event); err != nil {
			return err
		}
		c.logger.Info("calendar entry removed from leave_cancelled event",
			zap.String("leave_request_id", event.LeaveRequestID),
		)
	default:
		c.logger.Warn("unknown leave lifecycle event type, skipping",
			zap.String("event_type", envelope.EventType),
		)
	}
	return nil
}
