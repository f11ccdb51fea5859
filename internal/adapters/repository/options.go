package repository

// settings are shared by every backend.
type settings struct {
	maxEntries int
}

// Option applies a configuration option to a Store.
type Option func(*settings)

// WithMaxEntries caps the history; the oldest entries are dropped first.
// Zero or less keeps everything.
func WithMaxEntries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
