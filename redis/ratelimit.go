package redis

import (
	"context"
	"strconv"
	"time"
)

// WindowCounter is a fixed-window request counter. Each key gets one Redis
// counter per window, created by INCR and expired with the window.
type WindowCounter struct {
	client func() *Client
	now    func() time.Time
}

// Allow records one request for key and reports whether the window's count
// is still within limit.
func (w *WindowCounter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	client := w.client()
	if client == nil {
		return false, errNotStarted
	}
	slot := w.now().UnixMilli() / window.Milliseconds()
	k := client.Key("ratelimit:" + key + ":" + strconv.FormatInt(slot, 10))

	pipe := client.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.PExpire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}
