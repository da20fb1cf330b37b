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


package template

import (
	"encoding/json"
	"io/ioutil"
	"math"
	"os"
	"testing"
	"github.com/qstem/probekit/internal/cube"
	"github.com/qstem/probekit/internal/ops"
)

// a 2x2 scan of 16x16 Gaussian blobs centered at (8,8)
func testCube(t *testing.T) *cube.DataCube {
	c, err:=cube.NewDataCube(2, 2, 16, 16, nil)
	if err!=nil { t.Fatal(err) }
	for n:=0; n<4; n++ {
		base:=n*256
		for i:=0; i<16; i++ {
			for j:=0; j<16; j++ {
				d2:=float64((i-8)*(i-8)+(j-8)*(j-8))
				c.Data[base+i*16+j]=float32(100*math.Exp(-d2/8))
			}
		}
	}
	return c
}

func blobPromise(t *testing.T) ops.Promise {
	c:=testCube(t)
	p, err:=c.PatternAt(0)
	if err!=nil { t.Fatal(err) }
	return func() (*cube.Pattern, error) { return p.Clone(), nil }
}

func TestOpVacuumProbe(t *testing.T) {
	wd, err:=os.Getwd()
	if err!=nil { t.Fatal(err) }
	defer os.Chdir(wd)
	if err:=os.Chdir(t.TempDir()); err!=nil { t.Fatal(err) }

	if err:=testCube(t).WriteFile("vacuum.p4d"); err!=nil { t.Fatal(err) }

	c:=ops.NewContext(ioutil.Discard)
	op:=NewOpVacuumProbe("vacuum.p4d")
	promises, err:=op.MakePromises(nil, c)
	if err!=nil { t.Fatal(err) }
	if len(promises)!=1 { t.Fatalf("got %d promises expect 1", len(promises)) }

	p, err:=promises[0]()
	if err!=nil { t.Fatal(err) }
	if p.Naxisn[0]!=16 || p.Naxisn[1]!=16 {
		t.Errorf("probe dimensions %s expect 16x16", p.DimensionsToString())
	}
	if math.Abs(float64(p.Stats.Max)-100)>0.1 {
		t.Errorf("probe peak got %f expect 100", p.Stats.Max)
	}
}

func TestOpVacuumProbeRejectsAbsolutePath(t *testing.T) {
	c:=ops.NewContext(ioutil.Discard)
	op:=NewOpVacuumProbe("/etc/passwd")
	if _, err:=op.MakePromises(nil, c); err==nil {
		t.Error("no error for absolute path")
	}
}

func TestOpKernelModes(t *testing.T) {
	c:=ops.NewContext(ioutil.Discard)

	for _, tc:=range []struct{ mode string; wantSum float64 }{
		{KernelPlain, 1},
		{KernelGaussian, 0},
		{KernelTrench, 0},
	} {
		op:=NewOpKernel(tc.mode, 2, 4, 2, 2)
		promises, err:=op.MakePromises([]ops.Promise{blobPromise(t)}, c)
		if err!=nil { t.Fatal(err) }
		k, err:=promises[0]()
		if err!=nil { t.Fatalf("mode %s: %s", tc.mode, err.Error()) }

		sum:=float64(0)
		for _,v:=range k.Data { sum+=float64(v) }
		if math.Abs(sum-tc.wantSum)>1e-4 {
			t.Errorf("mode %s kernel sum got %g expect %g", tc.mode, sum, tc.wantSum)
		}
	}
}

func TestOpKernelInvalidMode(t *testing.T) {
	c:=ops.NewContext(ioutil.Discard)
	op:=NewOpKernel("bogus", 2, 4, 2, 2)
	promises, err:=op.MakePromises([]ops.Promise{blobPromise(t)}, c)
	if err!=nil { t.Fatal(err) }
	if _, err:=promises[0](); err==nil {
		t.Error("no error for unknown kernel mode")
	}
}

func TestSequenceJSONRoundTrip(t *testing.T) {
	seq:=ops.NewOpSequence(
		NewOpVacuumProbe("vacuum.p4d"),
		NewOpKernel(KernelTrench, 2, 5, 3, 2),
		ops.NewOpSave("kernel.p2d"),
	)
	data, err:=json.Marshal(seq)
	if err!=nil { t.Fatal(err) }

	restored:=ops.NewOpSequenceDefault()
	if err:=json.Unmarshal(data, restored); err!=nil { t.Fatal(err) }
	if len(restored.Steps)!=3 {
		t.Fatalf("got %d steps expect 3", len(restored.Steps))
	}
	for i, want:=range []string{"vacuumProbe", "kernel", "save"} {
		if got:=restored.Steps[i].GetType(); got!=want {
			t.Errorf("step %d type got %s expect %s", i, got, want)
		}
	}
	k:=restored.Steps[1].(*OpKernel)
	if k.Mode!=KernelTrench || k.Radius!=5 || k.TrenchWidth!=3 || k.BlurWidth!=2 {
		t.Errorf("kernel parameters lost in round trip: %+v", k)
	}
}
