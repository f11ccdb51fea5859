package service

import (
	"time"

	"github.com/okian/matchkey/internal/adapters/qrcode"
	"github.com/okian/matchkey/internal/adapters/repository"
	"github.com/okian/matchkey/internal/domain/keying"
	"github.com/okian/matchkey/internal/domain/mailto"
	"github.com/okian/matchkey/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDeriver sets the key deriver. It is required.
func WithDeriver(d *keying.Deriver) Option {
	return func(s *Service) {
		s.deriver = d
	}
}

// WithStore sets the history store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithTemplate sets the email body template. A blank body keeps the default.
func WithTemplate(body string) Option {
	return func(s *Service) {
		s.template = mailto.NewTemplate(body)
	}
}

// WithRecipient sets the address payment requests are sent to.
func WithRecipient(addr string) Option {
	return func(s *Service) {
		s.recipient = addr
	}
}

// WithSubject sets the email subject line.
func WithSubject(subject string) Option {
	return func(s *Service) {
		if subject != "" {
			s.subject = subject
		}
	}
}

// WithEncoder sets the QR encoder.
func WithEncoder(enc *qrcode.Encoder) Option {
	return func(s *Service) {
		if enc != nil {
			s.encoder = enc
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
