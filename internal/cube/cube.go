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


package cube

import (
	"errors"
	"fmt"
	"strings"
	"github.com/qstem/probekit/internal/stats"
)

// A single 2D diffraction pattern in reciprocal space, or any 2D image
// derived from one (average probe, convolution kernel). Data is stored
// row-major with the second detector axis varying fastest: the value at
// detector position (qx,qy) is Data[qx*Naxisn[0]+qy].
type Pattern struct {
	ID       int         // Sequential ID number, for log output
	FileName string      // Original file name, if any, for log output

	Naxisn []int32       // Axis dimensions. Most quickly varying dimension first, i.e. [QNy, QNx]
	Pixels int32         // Number of pixels in the pattern. Product of Naxisn[]

	Data []float32       // The pattern data

	Stats *stats.Stats   // Basic statistics: min, mean, max, stddev, sum
}

// Creates a pattern with the given naxisn. Data is not copied, allocated if nil.
// naxisn is deep copied
func NewPattern(naxisn []int32, data []float32) *Pattern {
	numPixels:=int32(1)
	for _,naxis:=range naxisn {
		numPixels*=naxis
	}
	if data==nil {
		data=make([]float32, numPixels)
	}
	return &Pattern{
		Naxisn: append([]int32(nil), naxisn...), // clone slice
		Pixels: numPixels,
		Data:   data,
		Stats:  stats.NewStats(data),
	}
}

// Creates a pattern with the same shape as the given pattern.
// A new data array is allocated
func NewPatternFromPattern(p *Pattern) *Pattern {
	data:=make([]float32, p.Pixels)
	return &Pattern{
		ID:       p.ID,
		FileName: p.FileName,
		Naxisn:   append([]int32(nil), p.Naxisn...),
		Pixels:   p.Pixels,
		Data:     data,
		Stats:    stats.NewStats(data),
	}
}

// Creates a deep copy of the pattern including its data
func (p *Pattern) Clone() *Pattern {
	res:=NewPatternFromPattern(p)
	copy(res.Data, p.Data)
	res.Stats=stats.NewStats(res.Data)
	return res
}

// Recomputes the cached statistics after the data was modified
func (p *Pattern) UpdateStats() {
	p.Stats=stats.NewStats(p.Data)
}

func (p *Pattern) DimensionsToString() string {
	b:=strings.Builder{}
	for i,naxis:=range p.Naxisn {
		if i>0 {
			fmt.Fprintf(&b, "x%d", naxis)
		} else {
			fmt.Fprintf(&b, "%d", naxis)
		}
	}
	return b.String()
}

// Equal tells whether a and b contain the same elements.
// A nil argument is equivalent to an empty slice
func EqualInt32Slice(a, b []int32) bool {
	if len(a)!=len(b) { return false }
	for i,v:=range a {
		if v!=b[i] { return false }
	}
	return true
}

// A 4D scan dataset: a grid of RNx x RNy real-space scan positions, each
// holding one QNx x QNy diffraction pattern. The flat data array is laid
// out as [RNx][RNy][QNx][QNy] with the last axis varying fastest
type DataCube struct {
	FileName string   // Original file name, if any, for log output

	RNx, RNy int32    // Real-space scan dimensions
	QNx, QNy int32    // Reciprocal-space detector dimensions

	Data []float32    // The flat 4D data
}

// Creates a datacube of the given dimensions. Data is not copied, allocated if nil
func NewDataCube(rNx, rNy, qNx, qNy int32, data []float32) (*DataCube, error) {
	if rNx<=0 || rNy<=0 || qNx<=0 || qNy<=0 {
		return nil, errors.New(fmt.Sprintf("invalid datacube dimensions %dx%dx%dx%d", rNx, rNy, qNx, qNy))
	}
	numValues:=int(rNx)*int(rNy)*int(qNx)*int(qNy)
	if data==nil {
		data=make([]float32, numValues)
	} else if len(data)!=numValues {
		return nil, errors.New(fmt.Sprintf("datacube data has %d values, dimensions %dx%dx%dx%d require %d",
			len(data), rNx, rNy, qNx, qNy, numValues))
	}
	return &DataCube{RNx: rNx, RNy: rNy, QNx: qNx, QNy: qNy, Data: data}, nil
}

// Total number of scan positions
func (c *DataCube) ScanPositions() int {
	return int(c.RNx)*int(c.RNy)
}

func (c *DataCube) DimensionsToString() string {
	return fmt.Sprintf("%dx%dx%dx%d", c.RNx, c.RNy, c.QNx, c.QNy)
}

// Returns the diffraction pattern for linear scan index n. The dataset
// convention maps n to scan position (rx,ry)=(n/RNx, n%RNx), using the
// row count both as divisor and modulus base. For non-square scans this
// can address positions outside the grid on either axis; those error
// per axis, never silently alias another scan position. The returned
// pattern aliases the cube's data and must be treated as read-only
func (c *DataCube) PatternAt(n int) (*Pattern, error) {
	if n<0 || n>=c.ScanPositions() {
		return nil, errors.New(fmt.Sprintf("scan index %d outside [0,%d)", n, c.ScanPositions()))
	}
	rx:=int32(n)/c.RNx
	ry:=int32(n)%c.RNx
	if rx>=c.RNx || ry>=c.RNy {
		return nil, errors.New(fmt.Sprintf("scan index %d maps to position (%d,%d) outside the %dx%d grid",
			n, rx, ry, c.RNx, c.RNy))
	}
	patSize:=int(c.QNx)*int(c.QNy)
	offset:=(int(rx)*int(c.RNy)+int(ry))*patSize
	data:=c.Data[offset : offset+patSize]
	return &Pattern{
		ID:       n,
		FileName: c.FileName,
		Naxisn:   []int32{c.QNy, c.QNx},
		Pixels:   int32(patSize),
		Data:     data,
		Stats:    stats.NewStats(data),
	}, nil
}
