package embedding

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeDimensions(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestResizeImage_Downscales(t *testing.T) {
	data := encodeTestImage(t, 2000, 1000, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
	})

	resized, err := ResizeImage(data, 1024)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}

	w, h := decodeDimensions(t, resized)
	if w != 1024 || h != 512 {
		t.Errorf("expected 1024x512, got %dx%d", w, h)
	}
}

func TestResizeImage_SmallImageKeepsDimensions(t *testing.T) {
	data := encodeTestImage(t, 100, 80, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
	})

	resized, err := ResizeImage(data, 1024)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}

	w, h := decodeDimensions(t, resized)
	if w != 100 || h != 80 {
		t.Errorf("expected 100x80, got %dx%d", w, h)
	}
}

func TestResizeImage_AcceptsPNG(t *testing.T) {
	data := encodeTestImage(t, 50, 1500, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})

	resized, err := ResizeImage(data, 1024)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}

	w, h := decodeDimensions(t, resized)
	if h != 1024 {
		t.Errorf("expected height 1024, got %d", h)
	}
	if w != 34 { // 50 * 1024 / 1500, truncated
		t.Errorf("expected width 34, got %d", w)
	}
}

func TestResizeImage_RejectsGarbage(t *testing.T) {
	if _, err := ResizeImage([]byte("definitely not an image"), 1024); err == nil {
		t.Error("expected error for undecodable data")
	}
}
