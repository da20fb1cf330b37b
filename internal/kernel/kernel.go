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


package kernel

import (
	"errors"
	"fmt"
	"math"
	"github.com/qstem/probekit/internal/align"
	"github.com/qstem/probekit/internal/cube"
)

// Convolution kernels for Bragg disk detection, generated from an average
// probe template. All variants place the probe center at the array corners
// so the kernel can be applied via FFT cross-correlation without
// introducing an offset.

// Creates a plain convolution kernel: the probe normalized to unit sum,
// with its center of mass shifted to the array corners
func Plain(p *cube.Pattern) (*cube.Pattern, error) {
	xCoM, yCoM, err:=align.CoM(p)
	if err!=nil { return nil, err }
	res, err:=normalize(p)
	if err!=nil { return nil, err }
	return align.ShiftWrap(res, -xCoM, -yCoM), nil
}

// Creates a zero-sum convolution kernel by subtracting a normalized
// gaussian from the normalized probe, then shifting the center of mass to
// the array corners. The gaussian width is sigmaScale times the standard
// deviation of the probe intensity about its center of mass. The negative
// surround suppresses the slowly varying background under correlation
func SubtrGaussian(p *cube.Pattern, sigmaScale float32) (*cube.Pattern, error) {
	if sigmaScale<=0 {
		return nil, errors.New(fmt.Sprintf("invalid gaussian scale %g, must be positive", sigmaScale))
	}
	xCoM, yCoM, err:=align.CoM(p)
	if err!=nil { return nil, err }

	w, h:=int(p.Naxisn[0]), int(p.Naxisn[1])
	q2:=make([]float64, len(p.Data))
	sum, qstd2:=float64(0), float64(0)
	for i:=0; i<h; i++ {
		dx:=float64(i)-float64(xCoM)
		for j:=0; j<w; j++ {
			dy:=float64(j)-float64(yCoM)
			d2:=dx*dx+dy*dy
			q2[i*w+j]=d2
			v:=float64(p.Data[i*w+j])
			sum+=v
			qstd2+=d2*v
		}
	}
	if sum==0 {
		return nil, errors.New("cannot build kernel from probe with zero total intensity")
	}
	qstd2/=sum
	if qstd2<=0 {
		return nil, errors.New("probe has zero spatial extent, gaussian width undefined")
	}

	gauss:=make([]float64, len(p.Data))
	gaussSum:=float64(0)
	denom:=2*qstd2*float64(sigmaScale)*float64(sigmaScale)
	for i,d2:=range q2 {
		g:=math.Exp(-d2/denom)
		gauss[i]=g
		gaussSum+=g
	}

	res:=cube.NewPatternFromPattern(p)
	for i,v:=range p.Data {
		res.Data[i]=float32(float64(v)/sum - gauss[i]/gaussSum)
	}
	res.UpdateStats()
	return align.ShiftWrap(res, -xCoM, -yCoM), nil
}

// Creates a zero-sum convolution kernel by subtracting a normalized
// logistic annulus, a blurred-wall trench around the probe disk, from the
// normalized probe, then shifting the center of mass to the array corners.
// radius is the inner trench radius from the probe center, trenchWidth the
// annulus width, and blurWidth the full width of the trench wall blurring.
// A degenerate trench whose annulus vanishes everywhere, e.g. for zero
// trenchWidth, skips the subtraction and yields the plain unit-sum kernel
func LogisticTrench(p *cube.Pattern, radius, trenchWidth, blurWidth float32) (*cube.Pattern, error) {
	if blurWidth<=0 {
		return nil, errors.New(fmt.Sprintf("invalid blur width %g, must be positive", blurWidth))
	}
	if radius<0 || trenchWidth<0 {
		return nil, errors.New(fmt.Sprintf("invalid trench geometry radius %g width %g", radius, trenchWidth))
	}
	xCoM, yCoM, err:=align.CoM(p)
	if err!=nil { return nil, err }

	w, h:=int(p.Naxisn[0]), int(p.Naxisn[1])
	ann:=make([]float64, len(p.Data))
	annSum:=float64(0)
	for i:=0; i<h; i++ {
		dx:=float64(i)-float64(xCoM)
		for j:=0; j<w; j++ {
			dy:=float64(j)-float64(yCoM)
			qr:=math.Sqrt(dx*dx+dy*dy)-float64(radius)
			a:=1/(1+math.Exp(4*qr/float64(blurWidth))) -
				1/(1+math.Exp(4*(qr-float64(trenchWidth))/float64(blurWidth)))
			ann[i*w+j]=a
			annSum+=a
		}
	}

	res, err:=normalize(p)
	if err!=nil { return nil, err }
	if annSum!=0 {
		for i:=range res.Data {
			res.Data[i]-=float32(ann[i]/annSum)
		}
		res.UpdateStats()
	}
	return align.ShiftWrap(res, -xCoM, -yCoM), nil
}

// Divides the pattern by its total intensity, yielding unit sum.
// Fails loudly for zero total intensity
func normalize(p *cube.Pattern) (*cube.Pattern, error) {
	sum:=float64(0)
	for _,v:=range p.Data {
		sum+=float64(v)
	}
	if sum==0 {
		return nil, errors.New("cannot normalize probe with zero total intensity")
	}
	res:=cube.NewPatternFromPattern(p)
	for i,v:=range p.Data {
		res.Data[i]=float32(float64(v)/sum)
	}
	res.UpdateStats()
	return res, nil
}
