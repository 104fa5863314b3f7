package services

import (
	"bytes"
	"image/png"
	"testing"
)

func TestQRCodePNG(t *testing.T) {
	data, err := QRCodePNG(VerifyURL("https://tax.example.in/verify", "LONI-2025-ABCDEF12"), 320)
	if err != nil {
		t.Fatalf("QRCodePNG() error = %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 320 {
		t.Errorf("QR size = %dx%d, want 320x320", cfg.Width, cfg.Height)
	}
}

func TestQRCodePNG_EmptyContent(t *testing.T) {
	if _, err := QRCodePNG("", 100); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestVerifyURL(t *testing.T) {
	if got := VerifyURL("http://localhost:8090/verify", "LONI-2025-00000000"); got != "http://localhost:8090/verify/LONI-2025-00000000" {
		t.Errorf("VerifyURL = %q", got)
	}
}
