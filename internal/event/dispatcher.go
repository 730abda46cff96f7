// AngelaMos | 2026
// dispatcher.go

package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UserSaved fires exactly once per successful user create or update.
type UserSaved struct {
	UserID int64 `json:"user_id"`
}

type Listener func(ctx context.Context, evt UserSaved) error

// Dispatcher delivers a UserSaved event to its listener, either inline
// (sync driver) or through a Redis-backed queue drained by a Worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt UserSaved) error
}

type SyncDispatcher struct {
	listener Listener
}

func NewSyncDispatcher() *SyncDispatcher {
	return &SyncDispatcher{}
}

// Bind attaches the listener after construction; the listener usually
// lives on a service that itself needs the dispatcher.
func (d *SyncDispatcher) Bind(l Listener) {
	d.listener = l
}

func (d *SyncDispatcher) Dispatch(ctx context.Context, evt UserSaved) error {
	if d.listener == nil {
		return fmt.Errorf("dispatch user saved: no listener bound")
	}

	return d.listener(ctx, evt)
}

type QueueDispatcher struct {
	rdb      *redis.Client
	queueKey string
}

func NewQueueDispatcher(rdb *redis.Client, queueKey string) *QueueDispatcher {
	return &QueueDispatcher{rdb: rdb, queueKey: queueKey}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, evt UserSaved) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode user saved event: %w", err)
	}

	if err := d.rdb.LPush(ctx, d.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue user saved event: %w", err)
	}

	return nil
}
