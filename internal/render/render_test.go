// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/qstem/probekit/internal/cube"
)

func TestWriteMonoTIFF16(t *testing.T) {
	p := cube.NewPattern([]int32{4, 2}, []float32{
		0, 25, 50, 75,
		100, 100, 0, 50,
	})
	buf := bytes.Buffer{}
	if err := WriteMonoTIFF16(p, &buf, 0, 100, 1); err != nil {
		t.Fatal(err)
	}

	img, err := tiff.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Fatalf("decoded size %v expect 4x2", img.Bounds())
	}
	midGray := float32(0.5)
	if c := img.At(2, 0).(color.Gray16); c.Y != uint16(midGray*65535) {
		t.Errorf("mid-gray pixel got %d expect %d", c.Y, uint16(midGray*65535))
	}
	if c := img.At(0, 1).(color.Gray16); c.Y != 65535 {
		t.Errorf("full-scale pixel got %d expect 65535", c.Y)
	}
}

func TestWriteDivergingPNG(t *testing.T) {
	p := cube.NewPattern([]int32{3, 1}, []float32{-1, 0, 1})
	buf := bytes.Buffer{}
	if err := WriteDivergingPNG(p, &buf, 0); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 1 {
		t.Fatalf("decoded size %v expect 3x1", img.Bounds())
	}
	r, g, b, _ := img.At(1, 0).RGBA()
	if r < 0xf000 || g < 0xf000 || b < 0xf000 {
		t.Errorf("zero pixel got (%d,%d,%d) expect white", r, g, b)
	}
	r, g, b, _ = img.At(2, 0).RGBA()
	if r <= b || r <= g {
		t.Errorf("positive pixel got (%d,%d,%d) expect red dominant", r, g, b)
	}
	r, g, b, _ = img.At(0, 0).RGBA()
	if b <= r || b <= g {
		t.Errorf("negative pixel got (%d,%d,%d) expect blue dominant", r, g, b)
	}
}

func TestAutoScale(t *testing.T) {
	data := make([]float32, 4096)
	for i := range data {
		data[i] = float32(i % 100)
	}
	p := cube.NewPattern([]int32{64, 64}, data)
	min, max := AutoScale(p)
	if min >= max {
		t.Errorf("degenerate scaling bounds [%g,%g]", min, max)
	}
	if min < 0 || max > 99 {
		t.Errorf("bounds [%g,%g] outside data range [0,99]", min, max)
	}

	zero := cube.NewPattern([]int32{8, 8}, nil)
	min, max = AutoScale(zero)
	if min >= max {
		t.Errorf("degenerate scaling bounds [%g,%g] for constant pattern", min, max)
	}
}
