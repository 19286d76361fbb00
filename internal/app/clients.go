package app

import (
	"fmt"

	"github.com/yungbote/lo-analysis-backend/internal/clients/redis"
	"github.com/yungbote/lo-analysis-backend/internal/nlp"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

type Clients struct {
	JobBus    redis.JobBus
	Tokenizer nlp.Tokenizer
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var bus redis.JobBus
	if cfg.Redis.Addr != "" {
		b, err := redis.NewJobBus(log, redis.Config{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis job bus: %w", err)
		}
		bus = b
	}

	// Tokenizer
	var tok nlp.Tokenizer
	switch cfg.Tokenizer.Kind {
	case "remote":
		r, err := nlp.NewRemoteTokenizer(log, cfg.Tokenizer.URL, cfg.Tokenizer.Timeout)
		if err != nil {
			closeBus(bus)
			return Clients{}, fmt.Errorf("init remote tokenizer: %w", err)
		}
		tok = r
	default:
		p, err := nlp.NewProseTokenizer()
		if err != nil {
			closeBus(bus)
			return Clients{}, fmt.Errorf("init prose tokenizer: %w", err)
		}
		tok = p
	}

	return Clients{JobBus: bus, Tokenizer: tok}, nil
}

func closeBus(bus redis.JobBus) {
	if bus != nil {
		_ = bus.Close()
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	closeBus(c.JobBus)
}
