package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// PublishPromising places one message per promising trader on the topic,
// keyed by address so repeated scans of the same trader compact naturally.
// A nil writer (kafka disabled or unreachable) is a no-op.
func PublishPromising(ctx context.Context, writer *kafka.Writer, summaries []models.TraderSummary) error {
	if writer == nil || len(summaries) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(summaries))
	for _, s := range summaries {
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal promising trader %s: %w", s.Address, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(s.Address), Value: payload})
	}
	return writer.WriteMessages(ctx, msgs...)
}
