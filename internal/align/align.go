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
	"errors"
	"fmt"
	"math"
	"github.com/qstem/probekit/internal/cube"
)

// Estimates the translation (dx,dy) that aligns target onto ref, via the
// peak of their FFT cross-correlation with parabolic sub-pixel refinement.
// dx runs along the first detector axis (rows), dy along the second
// (columns). Shifting target by (dx,dy) with ShiftWrap aligns it to ref
func EstimateShift(ref, target *cube.Pattern) (dx, dy float32, err error) {
	if len(ref.Naxisn)!=2 || len(target.Naxisn)!=2 {
		return 0, 0, errors.New("shift estimation needs 2D patterns")
	}
	if !cube.EqualInt32Slice(ref.Naxisn, target.Naxisn) {
		return 0, 0, errors.New(fmt.Sprintf("pattern dimensions %s and %s differ",
			ref.DimensionsToString(), target.DimensionsToString()))
	}
	w, h:=int(ref.Naxisn[0]), int(ref.Naxisn[1])

	f:=toComplex(ref.Data)
	g:=toComplex(target.Data)
	fft2(f, w, h)
	fft2(g, w, h)

	// cross power spectrum F * conj(G), correlation surface via inverse FFT
	for i,v:=range f {
		f[i]=v*complex(real(g[i]), -imag(g[i]))
	}
	ifft2(f, w, h)

	// locate the correlation peak
	peakIdx, peakVal:=0, math.Inf(-1)
	for i,v:=range f {
		if r:=real(v); r>peakVal {
			peakIdx, peakVal=i, r
		}
	}
	px, py:=peakIdx/w, peakIdx%w

	// parabolic sub-pixel refinement along each axis, with wraparound neighbors
	cc:=func(x, y int) float64 {
		x=(x+h)%h
		y=(y+w)%w
		return real(f[x*w+y])
	}
	sdx:=parabolicOffset(cc(px-1, py), peakVal, cc(px+1, py))
	sdy:=parabolicOffset(cc(px, py-1), peakVal, cc(px, py+1))

	dx=float32(float64(freqIndex(px, h))+sdx)
	dy=float32(float64(freqIndex(py, w))+sdy)
	return dx, dy, nil
}

// Vertex offset in [-0.5,0.5] of the parabola through (-1,cm), (0,c0), (1,cp)
func parabolicOffset(cm, c0, cp float64) float64 {
	denom:=cm-2*c0+cp
	if denom==0 { return 0 }
	off:=0.5*(cm-cp)/denom
	if off>0.5 { off=0.5 }
	if off< -0.5 { off= -0.5 }
	return off
}

// Applies a sub-pixel translation by (dx,dy) with periodic wraparound,
// using the Fourier shift theorem. The result at position p equals the
// input at position p-(dx,dy)
func ShiftWrap(p *cube.Pattern, dx, dy float32) *cube.Pattern {
	w, h:=int(p.Naxisn[0]), int(p.Naxisn[1])

	f:=toComplex(p.Data)
	fft2(f, w, h)

	for x:=0; x<h; x++ {
		fx:=float64(freqIndex(x, h))*float64(dx)/float64(h)
		for y:=0; y<w; y++ {
			fy:=float64(freqIndex(y, w))*float64(dy)/float64(w)
			phase:= -2*math.Pi*(fx+fy)
			rot:=complex(math.Cos(phase), math.Sin(phase))
			f[x*w+y]*=rot
		}
	}
	ifft2(f, w, h)

	res:=cube.NewPatternFromPattern(p)
	for i,v:=range f {
		res.Data[i]=float32(real(v))
	}
	res.UpdateStats()
	return res
}
