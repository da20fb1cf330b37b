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
	"math"
	"testing"
	"github.com/valyala/fastrand"
)

func TestNewStats(t *testing.T) {
	data:=[]float32{1, 2, 3, 4}
	s:=NewStats(data)
	if s.Min!=1 || s.Max!=4 { t.Errorf("min/max got %f/%f expect 1/4", s.Min, s.Max) }
	if s.Mean!=2.5 { t.Errorf("mean got %f expect 2.5", s.Mean) }
	if s.Sum!=10 { t.Errorf("sum got %f expect 10", s.Sum) }
	expectSD:=float32(math.Sqrt(1.25))
	if diff:=s.StdDev-expectSD; diff>1e-6 || diff< -1e-6 {
		t.Errorf("stddev got %f expect %f", s.StdDev, expectSD)
	}
}

func TestMeanStdDev(t *testing.T) {
	mean, sd:=MeanStdDev([]float32{2, 2, 2, 2})
	if mean!=2 || sd!=0 { t.Errorf("got mean %f sd %f expect 2, 0", mean, sd) }
}

func TestFastApproxMedian(t *testing.T) {
	rng:=fastrand.RNG{}
	data:=make([]float32, 100000)
	for i:=range data {
		data[i]=float32(rng.Uint32n(1000))
	}
	samples:=make([]float32, 16384)
	med:=FastApproxMedian(data, samples)
	if med<400 || med>600 {
		t.Errorf("approximate median of uniform [0,1000) got %f expect near 500", med)
	}
}
