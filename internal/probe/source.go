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


package probe

import (
	"errors"
	"fmt"
	"io"
	"github.com/qstem/probekit/internal/cube"
)

// How to obtain a probe template from a dataset
type SourceMode int

const (
	SourceVacuumScan SourceMode = iota // average an all-vacuum scan
	SourceROI                          // average a vacuum region of a sample scan
	SourceSynthetic                    // generate a synthetic probe model
)

// Returned for probe sources that are anticipated but not yet supported
var ErrNotImplemented = errors.New("probe source not implemented")

// A configured probe source. ROI and synthetic sources are structurally
// anticipated but currently return ErrNotImplemented
type Source struct {
	Mode          SourceMode
	MaskThreshold float32
	MaskExpansion int32
	MaskOpening   int32
}

// Creates a vacuum-scan probe source with default mask parameters
func NewVacuumScanSource() *Source {
	return &Source{
		Mode:          SourceVacuumScan,
		MaskThreshold: DefaultMaskThreshold,
		MaskExpansion: DefaultMaskExpansion,
		MaskOpening:   DefaultMaskOpening,
	}
}

// Obtains the probe template from the given datacube per the source mode
func (s *Source) Probe(c *cube.DataCube, logWriter io.Writer) (*cube.Pattern, error) {
	switch s.Mode {
	case SourceVacuumScan:
		return AverageVacuumScan(c, s.MaskThreshold, s.MaskExpansion, s.MaskOpening, logWriter)
	case SourceROI, SourceSynthetic:
		return nil, ErrNotImplemented
	default:
		return nil, errors.New(fmt.Sprintf("invalid probe source mode %d", s.Mode))
	}
}
