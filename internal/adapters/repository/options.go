package repository

import (
	"time"

	"github.com/google/uuid"
)

// settings are shared by every store implementation.
type settings struct {
	now   func() time.Time
	newID func() string
}

func defaultSettings(opts []Option) settings {
	s := settings{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithClock sets the clock used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the function that assigns record IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *settings) {
		if newID != nil {
			s.newID = newID
		}
	}
}
