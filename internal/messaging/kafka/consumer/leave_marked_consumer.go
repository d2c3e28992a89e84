package consumer

import (
	"context"
	"encoding/json"

	"go-hrms/internal/events"
	"go-hrms/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveMarked turns leave-marked events into notification rows.
// Decode failures are committed and dropped; persistence failures leave the
// message uncommitted for redelivery.
func ConsumeLeaveMarked(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_marked")
	log.Info("leave marked consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave marked consumer stopped")
				return
			}
			log.Error("fetch leave marked message failed", zap.Error(err))
			continue
		}

		var event events.LeaveMarkedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave marked event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notificationService.RecordLeaveMarked(ctx, event); err != nil {
			log.Error("record leave notification failed",
				zap.String("user_id", event.UserID),
				zap.String("date", event.Date),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave marked message failed", zap.Error(err))
			continue
		}

		log.Info("leave marked event consumed",
			zap.String("user_id", event.UserID),
			zap.String("date", event.Date),
			zap.String("source", event.Source),
		)
	}
}
