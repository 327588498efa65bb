package task

import (
	"time"

	"github.com/ShayCichocki/garagepm/internal/config"
	"github.com/ShayCichocki/garagepm/internal/debuglog"
)

// Option configures a Context. Use With* functions to create Options.
type Option func(*contextOptions)

type contextOptions struct {
	clock  func() time.Time
	logger *debuglog.Logger
	cfg    *config.Config
}

// WithClock sets the time source used for "now". Tests use a fixed clock.
func WithClock(clock func() time.Time) Option {
	return func(o *contextOptions) { o.clock = clock }
}

// WithLogger sets the debug logger.
func WithLogger(l *debuglog.Logger) Option {
	return func(o *contextOptions) { o.logger = l }
}

// WithConfig sets the configuration. Defaults to config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *contextOptions) { o.cfg = cfg }
}

func defaultOptions() *contextOptions {
	return &contextOptions{
		clock:  time.Now,
		logger: debuglog.Nop(),
		cfg:    config.Default(),
	}
}
