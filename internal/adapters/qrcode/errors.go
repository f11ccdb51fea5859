package qrcode

import "errors"

// Sentinel kinds for QR rendering errors.
var (
	ErrEmptyPayload    = errors.New("qr payload is empty")
	ErrUnknownRecovery = errors.New("unknown qr recovery level")
	ErrPayloadTooLarge = errors.New("qr payload too large")
)
