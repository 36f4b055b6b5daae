package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/processor"
)

// Worker consumes postings from the queue and applies them to the ledger
type Worker struct {
	client    *redis.Client
	processor *processor.PostingProcessor
	prefix    string
	logger    *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewWorker creates a new Worker
func NewWorker(client *redis.Client, proc *processor.PostingProcessor, prefix string, logger *zap.Logger) *Worker {
	return &Worker{
		client:    client,
		processor: proc,
		prefix:    prefix,
		logger:    logger,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins consuming messages from the queue.
// It runs until ctx is cancelled or Stop is called. A message already taken
// off the queue is always finished, even when ctx is cancelled meanwhile.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)
	w.logger.Info("worker started", zap.String("queue", PendingKey(w.prefix)))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping", zap.String("reason", "context cancelled"))
			return
		case <-w.stopCh:
			w.logger.Info("worker stopping", zap.String("reason", "stop signal"))
			return
		default:
			// wait up to 5 seconds, then loop to check for stop
			result, err := w.client.BLPop(ctx, 5*time.Second, PendingKey(w.prefix)).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				w.logger.Error("failed to read from queue", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}

			// result[0] is the key, result[1] is the message
			if len(result) < 2 {
				continue
			}

			w.processMessage(ctx, result[1])
		}
	}
}

// Stop signals the worker to stop processing. It may be called more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Done is closed when Start has returned
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// ProcessOne processes a single message synchronously. It reports false
// when the queue was empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	data, err := w.client.LPop(ctx, PendingKey(w.prefix)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	w.processMessage(ctx, data)
	return true, nil
}

// processMessage handles a single message from the queue. The message is
// already off the queue, so it is applied and persisted, or recorded as
// failed, regardless of ctx cancellation.
func (w *Worker) processMessage(ctx context.Context, data string) {
	ctx = context.WithoutCancel(ctx)

	var msg PostingMessage
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		w.logger.Error("failed to unmarshal message", zap.Error(err))
		w.recordFailure(ctx, PostingMessage{}, "malformed message: "+err.Error())
		return
	}

	log := w.logger.With(
		zap.String("posting_id", msg.ID.String()),
		zap.String("account", msg.Account),
		zap.String("type", msg.Type),
	)
	log.Debug("processing posting")

	result, err := w.processor.Process(ctx, processor.Posting{
		ID:      msg.ID,
		Account: msg.Account,
		Type:    msg.Type,
		Amount:  msg.Amount,
	})
	if err != nil {
		log.Error("failed to process posting", zap.Error(err))
		w.recordFailure(ctx, msg, err.Error())
		return
	}

	if !result.Success {
		log.Warn("posting rejected", zap.String("error", result.ErrorMessage))
		w.recordFailure(ctx, msg, result.ErrorMessage)
		return
	}
	log.Info("posting applied", zap.String("amount", msg.Amount))
}

// recordFailure keeps the failed posting on the failed list for inspection
func (w *Worker) recordFailure(ctx context.Context, msg PostingMessage, reason string) {
	data, err := json.Marshal(FailedPosting{Message: msg, Error: reason, FailedAt: time.Now()})
	if err != nil {
		w.logger.Error("failed to marshal failed posting", zap.Error(err))
		return
	}
	if err := w.client.RPush(ctx, FailedKey(w.prefix), data).Err(); err != nil {
		w.logger.Error("failed to record failed posting", zap.Error(err))
	}
}
