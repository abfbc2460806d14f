package email

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
)

//go:embed qr_card.html
var qrCardHTML string

var qrCardTemplate = template.Must(template.New("qr_card").Parse(qrCardHTML))

type qrCardData struct {
	Nom          string
	Prenom       string
	ImageURL     string
	QRCodeBase64 string
}

// renderQRCard produces the HTML body of the registration mail: the user's
// profile card with the QR image inlined as a base64 data URI.
func renderQRCard(nom, prenom, imageURL string, qrPNG []byte) (string, error) {
	var buf bytes.Buffer
	err := qrCardTemplate.Execute(&buf, qrCardData{
		Nom:          nom,
		Prenom:       prenom,
		ImageURL:     imageURL,
		QRCodeBase64: base64.StdEncoding.EncodeToString(qrPNG),
	})
	if err != nil {
		return "", fmt.Errorf("render qr card: %w", err)
	}
	return buf.String(), nil
}
