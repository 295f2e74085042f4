// Package decoder extracts QR payloads from raw image bytes using the pure-Go
// zxing port. Malformed input is a not-found result, never an error: the
// pipeline treats an unreadable image the same as an image with no code.
package decoder

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

type QRDecoder struct{}

func NewQRDecoder() *QRDecoder {
	return &QRDecoder{}
}

// Decode scans data for a single QR code and returns its UTF-8 payload. When
// several codes are present the first decoded result wins.
func (d *QRDecoder) Decode(data []byte) (string, bool) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", false
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	// zxing readers carry per-decode state, so one reader per call keeps
	// concurrent pipeline invocations independent.
	result, err := qrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}
