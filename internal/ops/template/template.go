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
	"errors"
	"fmt"
	"github.com/qstem/probekit/internal/cube"
	"github.com/qstem/probekit/internal/kernel"
	"github.com/qstem/probekit/internal/ops"
	"github.com/qstem/probekit/internal/probe"
)

// Averages a vacuum scan datacube into a probe template.
// Takes zero inputs, produces one output
type OpVacuumProbe struct {
	ops.OpBase
	FileName      string  `json:"fileName"`
	MaskThreshold float32 `json:"maskThreshold"`
	MaskExpansion int32   `json:"maskExpansion"`
	MaskOpening   int32   `json:"maskOpening"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpVacuumProbeDefault()}) } // register the operator for JSON decoding

func NewOpVacuumProbeDefault() *OpVacuumProbe { return NewOpVacuumProbe("") }

func NewOpVacuumProbe(fileName string) *OpVacuumProbe {
	return &OpVacuumProbe{
		OpBase        : ops.OpBase{Type: "vacuumProbe", Active: true},
		FileName      : fileName,
		MaskThreshold : probe.DefaultMaskThreshold,
		MaskExpansion : probe.DefaultMaskExpansion,
		MaskOpening   : probe.DefaultMaskOpening,
	}
}

// Load the datacube from file and average it. Ignores any input promises provided
func (op *OpVacuumProbe) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if len(ins)>0 { return nil, errors.New(fmt.Sprintf("%s operator with non-zero input", op.Type)) }
	if !ops.IsPathAllowed(op.FileName) { return nil, errors.New("Filename outside current directory tree, aborting") }

	out:=func() (p *cube.Pattern, err error) {
		dc, err:=cube.ReadDataCubeFile(op.FileName)
		if err!=nil { return nil, err }
		if mb:=len(dc.Data)*4/1024/1024; mb>c.CubeMemoryMB {
			fmt.Fprintf(c.Log, "WARNING %d MB datacube exceeds %d MB memory budget\n", mb, c.CubeMemoryMB)
		}
		fmt.Fprintf(c.Log, "Loaded %s datacube from %s\n", dc.DimensionsToString(), dc.FileName)

		p, err=probe.AverageVacuumScan(dc, op.MaskThreshold, op.MaskExpansion, op.MaskOpening, c.Log)
		if err!=nil { return nil, err }
		p.FileName=dc.FileName
		return p, nil
	}
	return []ops.Promise{out}, nil
}


// Kernel generation modes
const (
	KernelPlain    = "plain"    // unit-sum normalized probe
	KernelGaussian = "gaussian" // zero-sum, gaussian subtracted
	KernelTrench   = "trench"   // zero-sum, logistic annulus subtracted
)

// Turns a probe template into a convolution kernel.
// Takes one input, produces one output
type OpKernel struct {
	ops.OpUnaryBase
	Mode          string  `json:"mode"`
	SigmaScale    float32 `json:"sigmaScale"`    // gaussian mode
	Radius        float32 `json:"radius"`        // trench mode
	TrenchWidth   float32 `json:"trenchWidth"`   // trench mode
	BlurWidth     float32 `json:"blurWidth"`     // trench mode
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpKernelDefault()}) } // register the operator for JSON decoding

func NewOpKernelDefault() *OpKernel { return NewOpKernel(KernelGaussian, 2, 0, 2, 2) }

func NewOpKernel(mode string, sigmaScale, radius, trenchWidth, blurWidth float32) *OpKernel {
	op:=OpKernel{
		OpUnaryBase : ops.OpUnaryBase{OpBase : ops.OpBase{Type: "kernel", Active: true}},
		Mode        : mode,
		SigmaScale  : sigmaScale,
		Radius      : radius,
		TrenchWidth : trenchWidth,
		BlurWidth   : blurWidth,
	}
	op.OpUnaryBase.Apply=op.Apply // assign class method to superclass abstract method
	return &op
}

func (op *OpKernel) Apply(p *cube.Pattern, c *ops.Context) (result *cube.Pattern, err error) {
	switch op.Mode {
	case KernelPlain:
		result, err=kernel.Plain(p)
	case KernelGaussian:
		result, err=kernel.SubtrGaussian(p, op.SigmaScale)
	case KernelTrench:
		result, err=kernel.LogisticTrench(p, op.Radius, op.TrenchWidth, op.BlurWidth)
	default:
		return nil, errors.New(fmt.Sprintf("unknown kernel mode '%s'", op.Mode))
	}
	if err!=nil { return nil, err }

	result.ID, result.FileName=p.ID, p.FileName
	fmt.Fprintf(c.Log, "%d: Generated %s %s kernel with %v\n", result.ID, result.DimensionsToString(), op.Mode, result.Stats)
	return result, nil
}
