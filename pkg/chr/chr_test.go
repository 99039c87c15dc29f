package chr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// smiley tile, indexes 0-3
var smiley = [8][8]uint8{
	{0, 0, 1, 1, 1, 1, 0, 0},
	{0, 1, 0, 0, 0, 0, 1, 0},
	{1, 0, 2, 0, 0, 2, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 3, 0, 0, 3, 0, 1},
	{1, 0, 0, 3, 3, 0, 0, 1},
	{0, 1, 0, 0, 0, 0, 1, 0},
	{0, 0, 1, 1, 1, 1, 0, 0},
}

func paletted(w, h int) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), DefaultPalette)
}

func TestEncode_Planes(t *testing.T) {
	img := paletted(8, 8)
	for y, row := range smiley {
		for x, v := range row {
			img.SetColorIndex(x, y, v)
		}
	}

	data, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) != BytesPerTile {
		t.Fatalf("len = %d; want %d", len(data), BytesPerTile)
	}

	wantLo := []byte{0x3C, 0x42, 0x81, 0x81, 0xA5, 0x99, 0x42, 0x3C}
	wantHi := []byte{0x00, 0x00, 0x24, 0x00, 0x24, 0x18, 0x00, 0x00}
	if !bytes.Equal(data[:8], wantLo) {
		t.Errorf("low plane = % X; want % X", data[:8], wantLo)
	}
	if !bytes.Equal(data[8:], wantHi) {
		t.Errorf("high plane = % X; want % X", data[8:], wantHi)
	}
}

func TestEncode_TileOrder(t *testing.T) {
	img := paletted(16, 16)
	// mark the top-left pixel of each tile with its tile number
	marks := []uint8{0, 1, 2, 3}
	for i, m := range marks {
		img.SetColorIndex((i%2)*8, (i/2)*8, m)
	}

	data, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i, m := range marks {
		tile := data[i*BytesPerTile:]
		got := tile[0]>>7 | (tile[8]>>7)<<1
		if got != m {
			t.Errorf("tile %d first pixel = %d; want %d", i, got, m)
		}
	}
}

func TestEncode_Greyscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(0, 0, color.Gray{Y: 0xFF})
	img.SetGray(1, 0, color.Gray{Y: 0x80})

	data, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// pixel 0 -> 3, pixel 1 -> 2
	if data[0] != 0x80 || data[8] != 0xC0 {
		t.Errorf("row 0 planes = %02X %02X; want 80 C0", data[0], data[8])
	}
}

func TestEncode_Errors(t *testing.T) {
	if _, err := Encode(paletted(12, 8)); !errors.Is(err, ErrDimensions) {
		t.Errorf("expected ErrDimensions, got %v", err)
	}
	if _, err := Encode(paletted(256, 136)); !errors.Is(err, ErrTooManyTiles) {
		t.Errorf("expected ErrTooManyTiles, got %v", err)
	}
}

func TestTiles_RoundTrip(t *testing.T) {
	img := paletted(24, 8)
	for y, row := range smiley {
		for x, v := range row {
			img.SetColorIndex(8+x, y, v)
		}
	}
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	sheet := Tiles(data, nil)
	if got := sheet.Bounds(); got != image.Rect(0, 0, 128, 8) {
		t.Fatalf("sheet bounds = %v", got)
	}
	for y, row := range smiley {
		for x, v := range row {
			if got := sheet.ColorIndexAt(8+x, y); got != v {
				t.Fatalf("pixel (%d,%d) = %d; want %d", 8+x, y, got, v)
			}
		}
	}
}

func TestTiles_Empty(t *testing.T) {
	if got := Tiles(nil, nil).Bounds(); got != image.Rect(0, 0, 128, 8) {
		t.Errorf("empty sheet bounds = %v", got)
	}
}

func TestPreview(t *testing.T) {
	data := make([]byte, BytesPerTile)
	data[0] = 0x80 // top-left pixel index 1

	img := Preview(data, nil, 3)
	if got := img.Bounds(); got != image.Rect(0, 0, 384, 24) {
		t.Fatalf("preview bounds = %v", got)
	}
	want := color.RGBAModel.Convert(DefaultPalette[1])
	for _, p := range []image.Point{{0, 0}, {2, 2}} {
		if got := color.RGBAModel.Convert(img.At(p.X, p.Y)); got != want {
			t.Errorf("pixel %v = %v; want %v", p, got, want)
		}
	}
	if got := color.RGBAModel.Convert(img.At(3, 0)); got == want {
		t.Error("scaled pixel bled into its neighbour")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, paletted(8, 8)); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}

	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
}
