package grid

import "image"

// GetGridCoords maps a linear cell index onto column and row.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// TileOrigin returns the top-left pixel of cell index in a grid of
// size x size cells, cols cells wide.
func TileOrigin(index, cols, size int) image.Point {
	x, y := GetGridCoords(index, cols)
	return image.Pt(x*size, y*size)
}

// Cells reports how many whole size x size cells fit across and down r.
func Cells(r image.Rectangle, size int) (cols, rows int) {
	return r.Dx() / size, r.Dy() / size
}
