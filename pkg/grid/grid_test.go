package grid

import (
	"image"
	"testing"
)

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// one pattern table row
		{0, 16, 0, 0},
		{1, 16, 1, 0},
		{15, 16, 15, 0},
		{16, 16, 0, 1},
		{255, 16, 15, 15},
		{256, 16, 0, 16},
		{511, 16, 15, 31},

		// nametable width
		{0, 32, 0, 0},
		{31, 32, 31, 0},
		{32, 32, 0, 1},
		{959, 32, 31, 29},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestTileOrigin(t *testing.T) {
	tests := []struct {
		index, cols, size int
		want              image.Point
	}{
		{0, 16, 8, image.Pt(0, 0)},
		{1, 16, 8, image.Pt(8, 0)},
		{17, 16, 8, image.Pt(8, 8)},
		{3, 2, 16, image.Pt(16, 16)},
	}
	for _, tc := range tests {
		if got := TileOrigin(tc.index, tc.cols, tc.size); got != tc.want {
			t.Errorf("TileOrigin(%d, %d, %d) = %v; want %v", tc.index, tc.cols, tc.size, got, tc.want)
		}
	}
}

func TestCells(t *testing.T) {
	cols, rows := Cells(image.Rect(0, 0, 128, 24), 8)
	if cols != 16 || rows != 3 {
		t.Errorf("Cells = (%d, %d); want (16, 3)", cols, rows)
	}
}
