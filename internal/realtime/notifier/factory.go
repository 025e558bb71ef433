package notifier

import (
	"fmt"

	"github.com/kushal45/OMS-sub001/internal/common/config"
	"go.uber.org/zap"
)

// New creates a notifier from configuration. The "noop" type returns nil:
// the hub treats a nil notifier as single-instance mode.
func New(logger *zap.Logger, cfg config.NotifierConfig) (Notifier, error) {
	switch cfg.Type {
	case "", "noop":
		return nil, nil
	case "redis":
		return NewRedisNotifier(logger, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown notifier type: %s", cfg.Type)
	}
}
