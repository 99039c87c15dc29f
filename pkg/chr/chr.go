// Package chr converts between images and NES pattern table data. A tile
// is 8x8 pixels at two bits per pixel, stored as eight bytes of the low
// bit plane followed by eight bytes of the high bit plane. Bit 7 of each
// byte is the leftmost pixel.
package chr

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/png"
	"io"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"nescart/pkg/grid"
)

const (
	TileSize     = 8
	BytesPerTile = 16
	// MaxTiles fills both pattern tables of one 8 KiB CHR bank.
	MaxTiles = 512
	// TilesPerRow is the width of a rendered sheet, one pattern table row.
	TilesPerRow = 16
)

var (
	ErrDimensions   = errors.New("image size is not a multiple of 8")
	ErrTooManyTiles = errors.New("image holds more than 512 tiles")
)

// DefaultPalette is a four-step grey ramp.
var DefaultPalette = color.Palette{
	color.Gray{Y: 0x00},
	color.Gray{Y: 0x55},
	color.Gray{Y: 0xAA},
	color.Gray{Y: 0xFF},
}

// Decode reads a PNG, GIF or BMP image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return img, nil
}

// Encode slices img into 8x8 tiles, left to right then top to bottom, and
// returns their pattern table bytes.
func Encode(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx()%TileSize != 0 || b.Dy()%TileSize != 0 {
		return nil, errors.Wrapf(ErrDimensions, "%dx%d", b.Dx(), b.Dy())
	}
	cols, rows := grid.Cells(b, TileSize)
	count := cols * rows
	if count > MaxTiles {
		return nil, errors.Wrapf(ErrTooManyTiles, "%d tiles", count)
	}

	index := pixelIndex(img)
	out := make([]byte, count*BytesPerTile)
	for t := 0; t < count; t++ {
		origin := grid.TileOrigin(t, cols, TileSize).Add(b.Min)
		tile := out[t*BytesPerTile : (t+1)*BytesPerTile]
		for y := 0; y < TileSize; y++ {
			var lo, hi byte
			for x := 0; x < TileSize; x++ {
				v := index(origin.X+x, origin.Y+y)
				bit := uint(7 - x)
				lo |= (v & 1) << bit
				hi |= (v >> 1 & 1) << bit
			}
			tile[y] = lo
			tile[TileSize+y] = hi
		}
	}
	return out, nil
}

// pixelIndex picks the 2-bit colour of a pixel. Paletted images keep their
// index, anything else is quantised by brightness.
func pixelIndex(img image.Image) func(x, y int) byte {
	if p, ok := img.(*image.Paletted); ok {
		return func(x, y int) byte { return p.ColorIndexAt(x, y) % 4 }
	}
	return func(x, y int) byte {
		g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
		return g.Y >> 6
	}
}

// Tiles renders pattern data as a sheet TilesPerRow tiles wide. A palette
// with fewer than four colours is replaced by DefaultPalette.
func Tiles(data []byte, palette color.Palette) *image.Paletted {
	if len(palette) < 4 {
		palette = DefaultPalette
	}
	count := len(data) / BytesPerTile
	rows := (count + TilesPerRow - 1) / TilesPerRow
	if rows == 0 {
		rows = 1
	}
	sheet := image.NewPaletted(image.Rect(0, 0, TilesPerRow*TileSize, rows*TileSize), palette)

	for t := 0; t < count; t++ {
		origin := grid.TileOrigin(t, TilesPerRow, TileSize)
		tile := data[t*BytesPerTile : (t+1)*BytesPerTile]
		for y := 0; y < TileSize; y++ {
			lo, hi := tile[y], tile[TileSize+y]
			for x := 0; x < TileSize; x++ {
				bit := uint(7 - x)
				v := (lo>>bit)&1 | ((hi>>bit)&1)<<1
				sheet.SetColorIndex(origin.X+x, origin.Y+y, v)
			}
		}
	}
	return sheet
}

// Preview renders pattern data scaled up by an integer factor.
func Preview(data []byte, palette color.Palette, scale int) image.Image {
	if scale < 1 {
		scale = 1
	}
	src := Tiles(data, palette)
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx()*scale, sb.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}
