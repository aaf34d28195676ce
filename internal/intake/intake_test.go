package intake

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

const testMaxBytes = 10 * 1024 * 1024

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// encodeWEBP assembles a minimal lossless WebP container for the given
// dimensions. Go ships no WebP encoder, so the VP8L header is written by
// hand: signature byte, then width-1 and height-1 as 14-bit fields packed
// LSB-first, then the alpha hint and version bits, all zero.
func encodeWEBP(t *testing.T, w, h int) []byte {
	t.Helper()
	bits := uint32(w-1) | uint32(h-1)<<14
	stream := []byte{0x2f, byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	// 4 for "WEBP", 8 for the chunk header, payload plus odd-length pad.
	if err := binary.Write(&buf, binary.LittleEndian, uint32(4+8+len(stream)+1)); err != nil {
		t.Fatalf("failed to write RIFF length: %v", err)
	}
	buf.WriteString("WEBPVP8L")
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(stream))); err != nil {
		t.Fatalf("failed to write chunk length: %v", err)
	}
	buf.Write(stream)
	buf.WriteByte(0)
	return buf.Bytes()
}

func TestLoadImageMeasuresDimensions(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		mime   string
		width  int
		height int
	}{
		{"png", encodePNG(t, 120, 80), "image/png", 120, 80},
		{"jpeg", encodeJPEG(t, 64, 48), "image/jpeg", 64, 48},
		{"jpg alias", encodeJPEG(t, 32, 32), "image/jpg", 32, 32},
		{"webp", encodeWEBP(t, 33, 17), "image/webp", 33, 17},
		{"mime case insensitive", encodePNG(t, 10, 20), "IMAGE/PNG", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := LoadImage(tt.data, tt.mime, testMaxBytes)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if asset.Width != tt.width || asset.Height != tt.height {
				t.Errorf("dimensions = %dx%d, want %dx%d", asset.Width, asset.Height, tt.width, tt.height)
			}
			if asset.Size != int64(len(tt.data)) {
				t.Errorf("size = %d, want %d", asset.Size, len(tt.data))
			}
		})
	}
}

func TestLoadImageUnsupportedFormat(t *testing.T) {
	for _, mime := range []string{"image/gif", "image/tiff", "application/pdf", ""} {
		_, err := LoadImage(encodePNG(t, 4, 4), mime, testMaxBytes)
		if !errors.Is(err, verse.ErrUnsupportedFormat) {
			t.Errorf("mime %q: err = %v, want ErrUnsupportedFormat", mime, err)
		}
	}
}

func TestLoadImageTooLarge(t *testing.T) {
	data := encodePNG(t, 100, 100)
	_, err := LoadImage(data, "image/png", int64(len(data))-1)
	if !errors.Is(err, verse.ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}

	// Oversized garbage fails the size gate before any decoding.
	garbage := bytes.Repeat([]byte{0xde, 0xad}, 32)
	_, err = LoadImage(garbage, "image/png", 16)
	if !errors.Is(err, verse.ErrTooLarge) {
		t.Errorf("oversized garbage: err = %v, want ErrTooLarge", err)
	}
}

func TestLoadImageCorrupt(t *testing.T) {
	_, err := LoadImage([]byte("not an image at all"), "image/png", testMaxBytes)
	if !errors.Is(err, verse.ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}

	// Truncated header: valid magic bytes, nothing else.
	truncated := encodePNG(t, 50, 50)[:8]
	_, err = LoadImage(truncated, "image/png", testMaxBytes)
	if !errors.Is(err, verse.ErrCorrupt) {
		t.Errorf("truncated: err = %v, want ErrCorrupt", err)
	}
}

func TestDescribe(t *testing.T) {
	asset := &ImageAsset{MIME: "image/jpeg", Width: 1200, Height: 630, Size: 2048}
	got := Describe(asset)
	if !strings.Contains(got, "1200x630") || !strings.Contains(got, "image/jpeg") || !strings.Contains(got, "2.0 KB") {
		t.Errorf("Describe = %q", got)
	}

	big := &ImageAsset{MIME: "image/png", Width: 10, Height: 10, Size: 5 * 1024 * 1024}
	if !strings.Contains(Describe(big), "5.0 MB") {
		t.Errorf("Describe = %q, want MB units", Describe(big))
	}
}
