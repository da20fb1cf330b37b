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


package morph

import (
	"github.com/qstem/probekit/internal/cube"
)

// Binary morphology on 2D masks with a 4-connected cross structuring
// element. Pixels outside the mask borders count as background.

// A boolean mask with the same layout as the pattern it was derived from
type Mask struct {
	Width  int32
	Height int32
	Data   []bool
}

// Creates an empty mask of the given dimensions
func NewMask(width, height int32) *Mask {
	return &Mask{Width: width, Height: height, Data: make([]bool, int(width)*int(height))}
}

// Creates a mask selecting all pattern pixels brighter than
// threshold times the pattern maximum
func Threshold(p *cube.Pattern, threshold float32) *Mask {
	m:=NewMask(p.Naxisn[0], p.Naxisn[1])
	limit:=p.Stats.Max*threshold
	for i,v:=range p.Data {
		m.Data[i]=v>limit
	}
	return m
}

// Counts the number of set pixels
func (m *Mask) Count() (count int) {
	for _,v:=range m.Data {
		if v { count++ }
	}
	return count
}

// Erodes the mask once: a pixel survives if it and its four neighbors are set
func (m *Mask) erodeOnce(buf []bool) {
	w, h:=int(m.Width), int(m.Height)
	for i:=0; i<h; i++ {
		for j:=0; j<w; j++ {
			idx:=i*w+j
			v:=m.Data[idx]
			v=v && i>0   && m.Data[idx-w]
			v=v && i<h-1 && m.Data[idx+w]
			v=v && j>0   && m.Data[idx-1]
			v=v && j<w-1 && m.Data[idx+1]
			buf[idx]=v
		}
	}
	copy(m.Data, buf)
}

// Dilates the mask once: a pixel is set if it or any of its four neighbors is set
func (m *Mask) dilateOnce(buf []bool) {
	w, h:=int(m.Width), int(m.Height)
	for i:=0; i<h; i++ {
		for j:=0; j<w; j++ {
			idx:=i*w+j
			v:=m.Data[idx]
			v=v || (i>0   && m.Data[idx-w])
			v=v || (i<h-1 && m.Data[idx+w])
			v=v || (j>0   && m.Data[idx-1])
			v=v || (j<w-1 && m.Data[idx+1])
			buf[idx]=v
		}
	}
	copy(m.Data, buf)
}

// Erodes the mask the given number of times
func (m *Mask) Erode(iterations int32) *Mask {
	buf:=make([]bool, len(m.Data))
	for n:=int32(0); n<iterations; n++ {
		m.erodeOnce(buf)
	}
	return m
}

// Dilates the mask the given number of times
func (m *Mask) Dilate(iterations int32) *Mask {
	buf:=make([]bool, len(m.Data))
	for n:=int32(0); n<iterations; n++ {
		m.dilateOnce(buf)
	}
	return m
}

// Opens the mask: erodes the given number of times, then dilates as often.
// Removes isolated bright specks such as x-ray hits without shrinking
// larger structures
func (m *Mask) Open(iterations int32) *Mask {
	buf:=make([]bool, len(m.Data))
	for n:=int32(0); n<iterations; n++ {
		m.erodeOnce(buf)
	}
	for n:=int32(0); n<iterations; n++ {
		m.dilateOnce(buf)
	}
	return m
}

// Zeroes all pattern values outside the mask, in place
func (m *Mask) Apply(p *cube.Pattern) {
	for i,v:=range m.Data {
		if !v { p.Data[i]=0 }
	}
	p.UpdateStats()
}
