package qrcode

import (
	"bytes"
	"testing"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestGenerator_EncodeProducesPNG(t *testing.T) {
	g := NewGenerator(200)

	png, err := g.Encode("775933399")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(png, pngSignature) {
		t.Error("output is not a png")
	}
}

func TestGenerator_DefaultSize(t *testing.T) {
	g := NewGenerator(0)
	if g.size != defaultSize {
		t.Fatalf("expected default size %d, got %d", defaultSize, g.size)
	}
}

func TestGenerator_EmptyContentFails(t *testing.T) {
	g := NewGenerator(200)
	if _, err := g.Encode(""); err == nil {
		t.Fatal("expected an error for empty content")
	}
}
