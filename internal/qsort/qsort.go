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


package qsort

// Selection and partitioning primitives for float32 arrays, used for
// percentile-based display scaling and sampled median estimation.
// Arrays must not contain IEEE NaN.

// Partitions the array around its middle pivot element, and returns the
// final pivot index. Values less than the pivot end up left of it,
// greater values right of it
func QPartitionFloat32(a []float32) int {
	left, right:=0, len(a)-1
	pivot:=a[(left+right)>>1]
	l, r:=left-1, right+1
	for {
		for {
			l++
			if a[l]>=pivot { break }
		}
		for {
			r--
			if a[r]<=pivot { break }
		}
		if l>=r { return r }
		a[l], a[r] = a[r], a[l]
	}
}

// Selects the k-th lowest element (1-based) of the array. Partially reorders the array
func QSelectFloat32(a []float32, k int) float32 {
	left, right:=0, len(a)-1
	for left<right {
		pivot:=a[(left+right)>>1]
		l, r:=left-1, right+1
		for {
			for {
				l++
				if a[l]>=pivot { break }
			}
			for {
				r--
				if a[r]<=pivot { break }
			}
			if l>=r { break }
			a[l], a[r] = a[r], a[l]
		}
		if k<=r-left+1 {
			right=r
		} else {
			k-=r-left+1
			left=r+1
		}
	}
	return a[left]
}

// Selects the median of the array. For even lengths, returns the mean of
// the two middle elements. Partially reorders the array
func QSelectMedianFloat32(a []float32) float32 {
	if len(a)==0 { return 0 }
	if (len(a)&1)!=0 {
		return QSelectFloat32(a, (len(a)>>1)+1)
	}
	lower:=QSelectFloat32(a, len(a)>>1)
	// the upper middle element is the minimum of the right partition
	upper:=a[len(a)>>1]
	for _,v:=range a[len(a)>>1:] {
		if v<upper { upper=v }
	}
	return 0.5*(lower+upper)
}

// Selects the given percentile in [0,1] of the array. Partially reorders the array
func QSelectPercentileFloat32(a []float32, percentile float32) float32 {
	k:=int(percentile*float32(len(a)-1)+0.5)+1
	if k<1 { k=1 }
	if k>len(a) { k=len(a) }
	return QSelectFloat32(a, k)
}
