// Package qrx renders share payloads as QR code images.
package qrx

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DefaultSize is the edge length in pixels of rendered codes.
const DefaultSize = 256

var ErrEmptyPayload = errors.New("qrx: empty payload")

// Encoder renders payloads at a fixed size and error correction level.
type Encoder struct {
	Size  int
	Level qr.ErrorCorrectionLevel
}

// NewEncoder returns an encoder producing DefaultSize codes with medium
// error correction.
func NewEncoder() *Encoder {
	return &Encoder{Size: DefaultSize, Level: qr.M}
}

// PNG encodes payload as a square PNG.
func (e *Encoder) PNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	code, err := qr.Encode(payload, e.Level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrx: encode: %w", err)
	}

	size := e.Size
	if size < code.Bounds().Dx() {
		size = code.Bounds().Dx()
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("qrx: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qrx: png: %w", err)
	}
	return buf.Bytes(), nil
}
