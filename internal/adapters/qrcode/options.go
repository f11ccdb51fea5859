package qrcode

import qr "github.com/skip2/go-qrcode"

// Option applies a configuration option to the Encoder.
type Option func(*Encoder)

// WithSize sets the PNG edge length in pixels. A negative size lets the
// library pick one module per pixel scaled to fit.
func WithSize(size int) Option {
	return func(e *Encoder) {
		if size != 0 {
			e.size = size
		}
	}
}

// WithRecovery sets the error correction level.
func WithRecovery(level qr.RecoveryLevel) Option {
	return func(e *Encoder) {
		e.recovery = level
	}
}

// WithoutBorder drops the quiet zone around the symbol.
func WithoutBorder() Option {
	return func(e *Encoder) {
		e.border = false
	}
}
