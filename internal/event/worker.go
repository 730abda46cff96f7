// AngelaMos | 2026
// worker.go

package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const popTimeout = 5 * time.Second

// Worker drains the user-saved queue and feeds events to the listener.
// Delivery is at least once: an event is popped before the listener runs,
// and listener failures are logged rather than re-queued.
type Worker struct {
	rdb      *redis.Client
	queueKey string
	listener Listener
	logger   *slog.Logger
}

func NewWorker(
	rdb *redis.Client,
	queueKey string,
	listener Listener,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		rdb:      rdb,
		queueKey: queueKey,
		listener: listener,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("event worker started", "queue", w.queueKey)

	for {
		if ctx.Err() != nil {
			w.logger.Info("event worker stopped")
			return
		}

		res, err := w.rdb.BRPop(ctx, popTimeout, w.queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				w.logger.Info("event worker stopped")
				return
			}
			w.logger.Error("pop user saved event", "error", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value]
		if len(res) != 2 {
			continue
		}

		w.handle(ctx, []byte(res[1]))
	}
}

func (w *Worker) handle(ctx context.Context, payload []byte) {
	var evt UserSaved
	if err := json.Unmarshal(payload, &evt); err != nil {
		w.logger.Error("decode user saved event", "error", err)
		return
	}

	if err := w.listener(ctx, evt); err != nil {
		w.logger.Error("handle user saved event",
			"user_id", evt.UserID,
			"error", err,
		)
	}
}
