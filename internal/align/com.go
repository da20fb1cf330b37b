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
	"github.com/qstem/probekit/internal/cube"
)

// Computes the intensity-weighted center of mass of the pattern over all
// pixels. x runs along the first detector axis (rows), y along the second
// (columns). Fails for zero total intensity rather than returning NaN
func CoM(p *cube.Pattern) (x, y float32, err error) {
	w, h:=int(p.Naxisn[0]), int(p.Naxisn[1])
	total, sumX, sumY:=float64(0), float64(0), float64(0)
	for i:=0; i<h; i++ {
		rowSum:=float64(0)
		for j:=0; j<w; j++ {
			v:=float64(p.Data[i*w+j])
			rowSum+=v
			sumY+=v*float64(j)
		}
		sumX+=rowSum*float64(i)
		total+=rowSum
	}
	if total==0 {
		return 0, 0, errors.New("center of mass undefined for zero total intensity")
	}
	return float32(sumX/total), float32(sumY/total), nil
}
