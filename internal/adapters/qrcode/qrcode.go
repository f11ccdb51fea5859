// Package qrcode renders payment request payloads as QR code images.
package qrcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// Encoder turns a text payload into a PNG QR code. It is immutable and safe
// for concurrent use.
type Encoder struct {
	size     int
	recovery qr.RecoveryLevel
	border   bool
}

// New returns an Encoder. Defaults: 256px, low recovery, with border; low
// recovery keeps long mailto payloads at a scannable density.
func New(opts ...Option) *Encoder {
	e := &Encoder{size: DefaultSize, recovery: qr.Low, border: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseRecovery maps a level name (low, medium, high, highest) to its value.
func ParseRecovery(name string) (qr.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "low", "l":
		return qr.Low, nil
	case "medium", "m":
		return qr.Medium, nil
	case "high", "q":
		return qr.High, nil
	case "highest", "h":
		return qr.Highest, nil
	default:
		return qr.Low, fmt.Errorf("%w: %q", ErrUnknownRecovery, name)
	}
}

// PNG encodes payload as a PNG image.
func (e *Encoder) PNG(payload string) ([]byte, error) {
	code, err := e.code(payload)
	if err != nil {
		return nil, err
	}
	png, err := code.PNG(e.size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

// ASCII renders payload with block characters for terminal output.
func (e *Encoder) ASCII(payload string) (string, error) {
	code, err := e.code(payload)
	if err != nil {
		return "", err
	}
	return code.ToSmallString(false), nil
}

// SavePNG writes an encoded image to path, creating parent directories as
// needed.
func SavePNG(path string, png []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create qr directory: %w", err)
		}
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write qr file: %w", err)
	}
	return nil
}

func (e *Encoder) code(payload string) (*qr.QRCode, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	// Content that does not fit the largest symbol is the only failure
	// qr.New reports for a non-empty payload.
	code, err := qr.New(payload, e.recovery)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrPayloadTooLarge, len(payload), err)
	}
	code.DisableBorder = !e.border
	return code, nil
}
