package qrcode

import (
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

const defaultSize = 200

// Generator encodes strings into PNG QR codes at a fixed pixel size.
type Generator struct {
	size int
}

// NewGenerator returns a Generator producing size×size PNGs.
// If size <= 0, defaultSize is used.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = defaultSize
	}
	return &Generator{size: size}
}

// Encode returns the PNG bytes of a QR code carrying content.
func (g *Generator) Encode(content string) ([]byte, error) {
	png, err := qr.Encode(content, qr.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
