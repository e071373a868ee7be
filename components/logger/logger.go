// Package logger is the process-wide logging component. One Logger exists
// per channel; "default" and "audit" are declared up front.
package logger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-scoped/framework/container"
)

// Audit is the qualifier of the audit channel.
const Audit = "audit"

// Logger is a channel-tagged zerolog logger managed as a singleton.
type Logger struct {
	container.Base
	zerolog.Logger

	Channel string
}

// Declare registers *Logger as a singleton. The first Make argument, if a
// string, names the channel and doubles as the qualifier.
//
//	audit := container.MustMake[*logger.Logger](ctx, c, logger.Audit)
func Declare(c *container.Container, base zerolog.Logger) error {
	return container.Declare(c, container.Singleton,
		func(_ context.Context, args ...any) (*Logger, error) {
			channel := channelOf(args...)
			return &Logger{
				Logger:  base.With().Str("channel", channel).Logger(),
				Channel: channel,
			}, nil
		},
		container.WithQualifierFunc(channelOf),
	)
}

func channelOf(args ...any) string {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok && s != "" {
			return s
		}
	}
	return container.Default
}
