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


package stats

import (
	"fmt"
	"math"
	"github.com/valyala/fastrand"
	"github.com/qstem/probekit/internal/qsort"
)

// Basic statistics on a data array
type Stats struct {
	Min    float32 // Minimum
	Max    float32 // Maximum
	Mean   float32 // Mean (average)
	StdDev float32 // Standard deviation (norm 2, sigma)
	Sum    float64 // Total intensity, accumulated in float64
}

// Calculate basic statistics for a data array
func NewStats(data []float32) (s *Stats) {
	s=&Stats{}
	if len(data)==0 { return s }
	mmin, mmax:=data[0], data[0]
	sum:=float64(0)
	for _,v:=range data {
		if v<mmin { mmin=v }
		if v>mmax { mmax=v }
		sum+=float64(v)
	}
	mean:=sum/float64(len(data))
	variance:=float64(0)
	for _,v:=range data {
		diff:=float64(v)-mean
		variance+=diff*diff
	}
	variance/=float64(len(data))
	s.Min, s.Max  =mmin, mmax
	s.Mean        =float32(mean)
	s.StdDev      =float32(math.Sqrt(variance))
	s.Sum         =sum
	return s
}

// Pretty print basic stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Sum %.6g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Sum)
}

// Calculates mean and standard deviation of the given data
func MeanStdDev(xs []float32) (mean, stdDev float32) {
	xmean:=float32(0)
	for _,x:=range xs { xmean+=x }
	xmean/=float32(len(xs))
	xvar:=float32(0)
	for _,x:=range xs { diff:=x-xmean; xvar+=diff*diff }
	xvar/=float32(len(xs))
	return xmean, float32(math.Sqrt(float64(xvar)))
}

// Estimates the median of the data by median-selecting on a random sample.
// The sample buffer determines the sample size, and is overwritten
func FastApproxMedian(data []float32, samples []float32) float32 {
	max:=uint32(len(data))
	rng:=fastrand.RNG{}
	for i:=range samples {
		samples[i]=data[rng.Uint32n(max)]
	}
	return qsort.QSelectMedianFloat32(samples)
}

// Estimates the given percentile in [0,1] of the data by selecting on a
// random sample. The sample buffer determines the sample size, and is overwritten
func FastApproxPercentile(data []float32, samples []float32, percentile float32) float32 {
	max:=uint32(len(data))
	rng:=fastrand.RNG{}
	for i:=range samples {
		samples[i]=data[rng.Uint32n(max)]
	}
	return qsort.QSelectPercentileFloat32(samples, percentile)
}
