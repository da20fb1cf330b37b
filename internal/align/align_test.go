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


package align

import (
	"math"
	"testing"
	"github.com/qstem/probekit/internal/cube"
)

// builds a 2D Gaussian blob of given amplitude and sigma centered at (cx,cy),
// cx along rows and cy along columns
func gaussianBlob(w, h int, cx, cy, sigma, amplitude float64) *cube.Pattern {
	p:=cube.NewPattern([]int32{int32(w), int32(h)}, nil)
	for i:=0; i<h; i++ {
		for j:=0; j<w; j++ {
			d2:=(float64(i)-cx)*(float64(i)-cx) + (float64(j)-cy)*(float64(j)-cy)
			p.Data[i*w+j]=float32(amplitude*math.Exp(-d2/(2*sigma*sigma)))
		}
	}
	p.UpdateStats()
	return p
}

func TestEstimateShiftInteger(t *testing.T) {
	ref:=gaussianBlob(32, 32, 16, 16, 2, 100)
	for _, shift:=range [][2]float64{{0, 0}, {2, 0}, {0, -3}, {-2, 1}, {3, 3}} {
		target:=gaussianBlob(32, 32, 16+shift[0], 16+shift[1], 2, 100)
		dx, dy, err:=EstimateShift(ref, target)
		if err!=nil { t.Fatal(err) }
		if math.Abs(float64(dx)+shift[0])>0.1 || math.Abs(float64(dy)+shift[1])>0.1 {
			t.Errorf("shift (%g,%g): estimated correction (%f,%f) expect (%g,%g)",
				shift[0], shift[1], dx, dy, -shift[0], -shift[1])
		}
	}
}

func TestEstimateShiftSubPixel(t *testing.T) {
	ref:=gaussianBlob(32, 32, 16, 16, 2, 100)
	target:=gaussianBlob(32, 32, 16.5, 15.7, 2, 100)
	dx, dy, err:=EstimateShift(ref, target)
	if err!=nil { t.Fatal(err) }
	if math.Abs(float64(dx)+0.5)>0.25 || math.Abs(float64(dy)-0.3)>0.25 {
		t.Errorf("sub-pixel estimate (%f,%f) expect near (-0.5,0.3)", dx, dy)
	}
}

func TestEstimateShiftAligns(t *testing.T) {
	ref:=gaussianBlob(32, 32, 16, 16, 2, 100)
	target:=gaussianBlob(32, 32, 18, 15, 2, 100)
	dx, dy, err:=EstimateShift(ref, target)
	if err!=nil { t.Fatal(err) }
	aligned:=ShiftWrap(target, dx, dy)
	for i,v:=range aligned.Data {
		if diff:=math.Abs(float64(v-ref.Data[i])); diff>0.5 {
			t.Fatalf("aligned pattern differs from reference by %g at %d", diff, i)
		}
	}
}

func TestEstimateShiftShapeMismatch(t *testing.T) {
	a:=gaussianBlob(32, 32, 16, 16, 2, 100)
	b:=gaussianBlob(16, 16, 8, 8, 2, 100)
	if _, _, err:=EstimateShift(a, b); err==nil {
		t.Error("no error for mismatched pattern dimensions")
	}
}

func TestShiftWrapInteger(t *testing.T) {
	p:=cube.NewPattern([]int32{4, 4}, nil)
	p.Data[1*4+2]=1 // single bright pixel at row 1, column 2

	res:=ShiftWrap(p, 2, 1)
	for i:=0; i<4; i++ {
		for j:=0; j<4; j++ {
			expect:=float32(0)
			if i==3 && j==3 { expect=1 }
			if diff:=math.Abs(float64(res.Data[i*4+j]-expect)); diff>1e-6 {
				t.Errorf("pixel (%d,%d) got %g expect %g", i, j, res.Data[i*4+j], expect)
			}
		}
	}
}

func TestShiftWrapRoundTrip(t *testing.T) {
	p:=gaussianBlob(16, 16, 8, 8, 1.5, 50)
	res:=ShiftWrap(ShiftWrap(p, 1.3, -2.7), -1.3, 2.7)
	for i,v:=range res.Data {
		if diff:=math.Abs(float64(v-p.Data[i])); diff>1e-3 {
			t.Fatalf("round trip differs by %g at %d", diff, i)
		}
	}
}

func TestCoM(t *testing.T) {
	p:=cube.NewPattern([]int32{8, 8}, nil)
	p.Data[3*8+5]=2
	x, y, err:=CoM(p)
	if err!=nil { t.Fatal(err) }
	if x!=3 || y!=5 { t.Errorf("CoM got (%f,%f) expect (3,5)", x, y) }

	blob:=gaussianBlob(32, 32, 14.25, 17.5, 2, 100)
	x, y, err=CoM(blob)
	if err!=nil { t.Fatal(err) }
	if math.Abs(float64(x)-14.25)>0.05 || math.Abs(float64(y)-17.5)>0.05 {
		t.Errorf("CoM got (%f,%f) expect (14.25,17.5)", x, y)
	}
}

func TestCoMZeroMass(t *testing.T) {
	p:=cube.NewPattern([]int32{4, 4}, nil)
	if _, _, err:=CoM(p); err==nil {
		t.Error("no error for zero total intensity")
	}
}
