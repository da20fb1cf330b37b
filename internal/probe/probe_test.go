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


package probe

import (
	"io/ioutil"
	"math"
	"testing"
	"github.com/valyala/fastrand"
	"github.com/qstem/probekit/internal/align"
	"github.com/qstem/probekit/internal/cube"
)

// writes a Gaussian blob of the given amplitude and sigma into the
// pattern at scan position (rx,ry), centered at (cx,cy)
func fillBlob(c *cube.DataCube, rx, ry int, cx, cy, sigma, amplitude float64) {
	w, h:=int(c.QNy), int(c.QNx)
	base:=(rx*int(c.RNy)+ry)*w*h
	for i:=0; i<h; i++ {
		for j:=0; j<w; j++ {
			d2:=(float64(i)-cx)*(float64(i)-cx) + (float64(j)-cy)*(float64(j)-cy)
			c.Data[base+i*w+j]=float32(amplitude*math.Exp(-d2/(2*sigma*sigma)))
		}
	}
}

// a 4x4 scan of 32x32 Gaussian blobs with the given per-position jitter
func blobCube(t *testing.T, jitter func(n int) (float64, float64)) *cube.DataCube {
	c, err:=cube.NewDataCube(4, 4, 32, 32, nil)
	if err!=nil { t.Fatal(err) }
	for n:=0; n<16; n++ {
		jx, jy:=jitter(n)
		fillBlob(c, n/4, n%4, 16+jx, 16+jy, 2, 100)
	}
	return c
}

func TestAverageIdenticalPatterns(t *testing.T) {
	c:=blobCube(t, func(n int) (float64, float64) { return 0, 0 })
	res, err:=AverageVacuumScan(c, DefaultMaskThreshold, DefaultMaskExpansion, DefaultMaskOpening, ioutil.Discard)
	if err!=nil { t.Fatal(err) }

	if math.Abs(float64(res.Stats.Max)-100)>0.01 {
		t.Errorf("peak got %f expect 100", res.Stats.Max)
	}
	x, y, err:=align.CoM(res)
	if err!=nil { t.Fatal(err) }
	if math.Abs(float64(x)-16)>0.1 || math.Abs(float64(y)-16)>0.1 {
		t.Errorf("blob center got (%f,%f) expect (16,16)", x, y)
	}
	if res.Data[0]!=0 {
		t.Errorf("corner outside mask got %g expect 0", res.Data[0])
	}
	for _,v:=range res.Data {
		if v< -1e-6 { t.Fatal("average probe has negative intensity") }
	}
}

func TestAverageSinglePattern(t *testing.T) {
	c, err:=cube.NewDataCube(1, 1, 32, 32, nil)
	if err!=nil { t.Fatal(err) }
	fillBlob(c, 0, 0, 16, 16, 2, 100)

	res, err:=AverageVacuumScan(c, DefaultMaskThreshold, DefaultMaskExpansion, DefaultMaskOpening, ioutil.Discard)
	if err!=nil { t.Fatal(err) }
	if math.Abs(float64(res.Stats.Max)-100)>1e-3 {
		t.Errorf("peak got %f expect 100", res.Stats.Max)
	}
	if res.Data[0]!=0 {
		t.Errorf("corner outside mask got %g expect 0", res.Data[0])
	}
}

func TestAverageJitteredPatterns(t *testing.T) {
	rng:=fastrand.RNG{}
	c:=blobCube(t, func(n int) (float64, float64) {
		if n==0 { return 0, 0 } // the alignment reference starts from frame 0
		return float64(rng.Uint32n(5))-2, float64(rng.Uint32n(5))-2
	})
	res, err:=AverageVacuumScan(c, DefaultMaskThreshold, DefaultMaskExpansion, DefaultMaskOpening, ioutil.Discard)
	if err!=nil { t.Fatal(err) }

	x, y, err:=align.CoM(res)
	if err!=nil { t.Fatal(err) }
	if math.Abs(float64(x)-16)>0.5 || math.Abs(float64(y)-16)>0.5 {
		t.Errorf("recovered blob center (%f,%f) expect within 0.5px of (16,16)", x, y)
	}
	if res.Data[0]!=0 || res.Data[31]!=0 {
		t.Error("intensity far outside the probe is not zero")
	}
}

func TestMaskExpansionMonotone(t *testing.T) {
	prev:=0
	for _, expansion:=range []int32{2, 6, 12} {
		c:=blobCube(t, func(n int) (float64, float64) { return 0, 0 })
		res, err:=AverageVacuumScan(c, DefaultMaskThreshold, expansion, DefaultMaskOpening, ioutil.Discard)
		if err!=nil { t.Fatal(err) }
		nonZero:=0
		for _,v:=range res.Data {
			if v!=0 { nonZero++ }
		}
		if nonZero<prev {
			t.Errorf("expansion %d shrank the surviving region: %d -> %d", expansion, prev, nonZero)
		}
		prev=nonZero
	}
}

func TestAverageEmptyScan(t *testing.T) {
	c:=&cube.DataCube{RNx: 0, RNy: 0, QNx: 32, QNy: 32}
	if _, err:=AverageVacuumScan(c, DefaultMaskThreshold, DefaultMaskExpansion, DefaultMaskOpening, ioutil.Discard); err==nil {
		t.Error("no error for a scan without positions")
	}
}

func TestSourceModes(t *testing.T) {
	c:=blobCube(t, func(n int) (float64, float64) { return 0, 0 })

	src:=NewVacuumScanSource()
	if _, err:=src.Probe(c, ioutil.Discard); err!=nil { t.Fatal(err) }

	for _, mode:=range []SourceMode{SourceROI, SourceSynthetic} {
		src.Mode=mode
		if _, err:=src.Probe(c, ioutil.Discard); err!=ErrNotImplemented {
			t.Errorf("mode %d got %v expect ErrNotImplemented", mode, err)
		}
	}
	src.Mode=SourceMode(99)
	if _, err:=src.Probe(c, ioutil.Discard); err==nil {
		t.Error("no error for invalid source mode")
	}
}
