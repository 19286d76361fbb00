package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// JobBus fans job lifecycle events out to every process subscribed to the
// channel (API nodes, `watch`, external dashboards).
type JobBus interface {
	Publish(ctx context.Context, ev *types.JobRunEvent) error
	Subscribe(ctx context.Context, onEvent func(ev *types.JobRunEvent)) error
	Close() error
}

type Config struct {
	Addr    string
	Channel string
}

type jobBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewJobBus(log *logger.Logger, cfg Config) (JobBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "lo-analysis.jobs"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &jobBus{
		log:     log.With("client", "RedisJobBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *jobBus) Publish(ctx context.Context, ev *types.JobRunEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis job bus not initialized")
	}
	if ev == nil {
		return nil
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Subscribe delivers events until ctx is done. It returns once the
// subscription is confirmed by the server.
func (b *jobBus) Subscribe(ctx context.Context, onEvent func(ev *types.JobRunEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis job bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev types.JobRunEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad job event payload", "error", err)
					continue
				}
				onEvent(&ev)
			}
		}
	}()
	return nil
}

func (b *jobBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
