package internal

import "time"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	now    func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithClock overrides the time source. Intended for tests and demos.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
