package email

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestRenderQRCard(t *testing.T) {
	qrPNG := []byte{0x89, 'P', 'N', 'G'}

	body, err := renderQRCard("Doe", "John", "https://cdn.example/p.png", qrPNG)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "John Doe") {
		t.Error("body must contain the recipient's full name")
	}
	if !strings.Contains(body, "https://cdn.example/p.png") {
		t.Error("body must reference the profile image")
	}
	if !strings.Contains(body, base64.StdEncoding.EncodeToString(qrPNG)) {
		t.Error("body must inline the qr image as base64")
	}
}

func TestRenderQRCard_NoProfileImage(t *testing.T) {
	body, err := renderQRCard("Doe", "John", "", []byte{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(body, `<img src=""`) {
		t.Error("empty profile image must not render an empty img tag")
	}
}
