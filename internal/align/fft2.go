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
	"gonum.org/v1/gonum/dsp/fourier"   // source via "go get gonum.org/v1/gonum"
)

// 2D FFT helpers on flat row-major arrays of width w and height h,
// decomposed into 1D transforms along rows, then columns.

// Converts a float32 array into a freshly allocated complex array
func toComplex(data []float32) []complex128 {
	res:=make([]complex128, len(data))
	for i,v:=range data {
		res[i]=complex(float64(v), 0)
	}
	return res
}

// Computes the unnormalized forward 2D DFT of data in place
func fft2(data []complex128, w, h int) {
	rowFFT:=fourier.NewCmplxFFT(w)
	buf:=make([]complex128, w)
	for y:=0; y<h; y++ {
		row:=data[y*w : (y+1)*w]
		rowFFT.Coefficients(buf, row)
		copy(row, buf)
	}

	colFFT:=fourier.NewCmplxFFT(h)
	colIn, colOut:=make([]complex128, h), make([]complex128, h)
	for x:=0; x<w; x++ {
		for y:=0; y<h; y++ { colIn[y]=data[y*w+x] }
		colFFT.Coefficients(colOut, colIn)
		for y:=0; y<h; y++ { data[y*w+x]=colOut[y] }
	}
}

// Computes the normalized inverse 2D DFT of data in place
func ifft2(data []complex128, w, h int) {
	rowFFT:=fourier.NewCmplxFFT(w)
	buf:=make([]complex128, w)
	for y:=0; y<h; y++ {
		row:=data[y*w : (y+1)*w]
		rowFFT.Sequence(buf, row)
		copy(row, buf)
	}

	colFFT:=fourier.NewCmplxFFT(h)
	colIn, colOut:=make([]complex128, h), make([]complex128, h)
	for x:=0; x<w; x++ {
		for y:=0; y<h; y++ { colIn[y]=data[y*w+x] }
		colFFT.Sequence(colOut, colIn)
		for y:=0; y<h; y++ { data[y*w+x]=colOut[y] }
	}

	scale:=1.0/float64(w*h)
	for i,v:=range data {
		data[i]=complex(real(v)*scale, imag(v)*scale)
	}
}

// Frequency index for position i of an n-point DFT, in [-n/2, n/2)
func freqIndex(i, n int) int {
	if i>n/2 { return i-n }
	return i
}
