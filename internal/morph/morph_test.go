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
	"testing"
	"github.com/qstem/probekit/internal/cube"
)

func (m *Mask) set(i, j int) { m.Data[i*int(m.Width)+j]=true }
func (m *Mask) get(i, j int) bool { return m.Data[i*int(m.Width)+j] }

// fill a square block of set pixels
func (m *Mask) setBlock(i0, j0, size int) {
	for i:=i0; i<i0+size; i++ {
		for j:=j0; j<j0+size; j++ {
			m.set(i, j)
		}
	}
}

func TestThreshold(t *testing.T) {
	p:=cube.NewPattern([]int32{4, 4}, []float32{
		0, 1, 2, 3,
		0, 0, 0, 0,
		10, 0, 0, 0,
		0, 0, 5, 0,
	})
	m:=Threshold(p, 0.2)
	if m.Count()!=3 { t.Errorf("count got %d expect 3", m.Count()) }
	if !m.get(0, 3) || !m.get(2, 0) || !m.get(3, 2) {
		t.Error("wrong pixels selected")
	}
}

func TestOpeningRemovesSpecks(t *testing.T) {
	m:=NewMask(16, 16)
	m.setBlock(4, 4, 7) // large structure
	m.set(12, 13)       // isolated speck, e.g. an x-ray hit
	m.Open(1)
	if m.get(12, 13) { t.Error("opening failed to remove isolated pixel") }
	if !m.get(7, 7) { t.Error("opening removed the interior of a large structure") }
}

func TestOpeningPreservesBlockInterior(t *testing.T) {
	m:=NewMask(16, 16)
	m.setBlock(4, 4, 8)
	before:=m.Count()
	m.Open(2)
	after:=m.Count()
	// corners are rounded off, the bulk survives
	if after==0 || after>before { t.Errorf("count went from %d to %d", before, after) }
	if !m.get(8, 8) { t.Error("block center did not survive opening") }
}

func TestDilationGrows(t *testing.T) {
	m:=NewMask(9, 9)
	m.set(4, 4)
	m.Dilate(2)
	if m.Count()!=13 { t.Errorf("count got %d expect 13", m.Count()) } // L1 ball of radius 2
	if !m.get(2, 4) || !m.get(4, 2) || !m.get(6, 4) || !m.get(4, 6) { t.Error("dilation missed extremes") }
}

func TestDilationMonotone(t *testing.T) {
	prev:=0
	for iters:=int32(0); iters<6; iters++ {
		m:=NewMask(32, 32)
		m.setBlock(14, 14, 4)
		m.Dilate(iters)
		count:=m.Count()
		if count<prev {
			t.Errorf("dilation with %d iterations shrank region: %d -> %d", iters, prev, count)
		}
		prev=count
	}
}

func TestApply(t *testing.T) {
	p:=cube.NewPattern([]int32{3, 3}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	m:=NewMask(3, 3)
	m.set(1, 1)
	m.Apply(p)
	for i,v:=range p.Data {
		if i==4 {
			if v!=5 { t.Errorf("masked-in pixel got %g expect 5", v) }
		} else if v!=0 {
			t.Errorf("pixel %d got %g expect 0", i, v)
		}
	}
}
