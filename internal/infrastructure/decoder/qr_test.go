package decoder

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

func encodeQR(t *testing.T, payload string) []byte {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, matrix); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestQRDecoder_Roundtrip(t *testing.T) {
	dec := NewQRDecoder()

	payload, found := dec.Decode(encodeQR(t, "0911111111"))
	if !found {
		t.Fatalf("expected a decoded code")
	}
	if payload != "0911111111" {
		t.Fatalf("expected payload 0911111111, got %q", payload)
	}
}

func TestQRDecoder_MalformedImage(t *testing.T) {
	dec := NewQRDecoder()

	if _, found := dec.Decode([]byte("definitely not an image")); found {
		t.Fatalf("malformed bytes must not decode")
	}
	if _, found := dec.Decode(nil); found {
		t.Fatalf("empty input must not decode")
	}
}

func TestQRDecoder_ImageWithoutCode(t *testing.T) {
	dec := NewQRDecoder()

	// A valid PNG with no QR code in it.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	if _, found := dec.Decode(buf.Bytes()); found {
		t.Fatalf("blank image must not decode")
	}
}
