package workers

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/drexon5/polymarket-trader-analyzer/internal/kafka"
	"github.com/drexon5/polymarket-trader-analyzer/internal/logging"
	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

// Handler processes one promising-trader message. A handler error is logged
// and the worker moves on; it never stops the pool.
type Handler func(context.Context, models.TraderSummary) error

// Run consumes promising-trader messages with a fixed-size worker pool until
// the context is cancelled.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reader := kafka.NewReader(brokers, topic, group)
			defer reader.Close()
			consume(ctx, reader, handler)
		}()
	}

	<-ctx.Done()
	wg.Wait()
}

// messageReader is the subset of kafka.Reader the consume loop needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
}

func consume(ctx context.Context, reader messageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("worker read error: %v", err)
			continue
		}

		var summary models.TraderSummary
		if err := json.Unmarshal(msg.Value, &summary); err != nil {
			logging.Errorf("worker unmarshal error: %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, summary); err != nil {
				logging.Errorf("worker handler error for %s: %v", summary.Address, err)
			}
		}
	}
}
