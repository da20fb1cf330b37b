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

package render

import (
	"bufio"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/tiff"

	"github.com/qstem/probekit/internal/cube"
	"github.com/qstem/probekit/internal/stats"
)

// Write a pattern to a grayscale 16-bit TIFF file, using the given min, max and gamma.
func WriteMonoTIFF16ToFile(p *cube.Pattern, fileName string, min, max, gamma float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return WriteMonoTIFF16(p, writer, min, max, gamma)
}

// Write a pattern to a grayscale 16-bit TIFF, using the given min, max and gamma.
func WriteMonoTIFF16(p *cube.Pattern, writer io.Writer, min, max, gamma float32) error {
	// convert pixels into Golang Image
	width, height := int(p.Naxisn[0]), int(p.Naxisn[1])
	img := image.NewGray16(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})
	scale := 1 / (max - min)
	gammaInv := float64(1.0 / gamma)
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			gray := p.Data[yoffset+x]
			gray = (gray - min) * scale
			// replace NaNs with zeros for export, else TIFF output breaks
			if math.IsNaN(float64(gray)) || gray < 0 {
				gray = 0
			}
			if gray > 1 {
				gray = 1
			}
			if gammaInv != 1.0 {
				gray = float32(math.Pow(float64(gray), gammaInv))
			}
			c := color.Gray16{uint16(gray * 65535)}
			img.SetGray16(x, y, c)
		}
	}

	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Uncompressed, Predictor: false})
}

// Write a signed pattern, typically a zero-sum kernel, to a PNG file with a
// diverging blue-white-red colormap. See WriteDivergingPNG.
func WriteDivergingPNGToFile(p *cube.Pattern, fileName string, limit float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return WriteDivergingPNG(p, writer, limit)
}

// Write a signed pattern to a PNG with a diverging colormap: negative
// values blend towards blue, positive towards red, zero is white. The
// colormap is symmetric about zero and saturates at +-limit. A limit<=0
// autoscales to the largest absolute value in the pattern. Colors are
// blended in Lab space for perceptual uniformity.
func WriteDivergingPNG(p *cube.Pattern, writer io.Writer, limit float32) error {
	if limit <= 0 {
		limit = p.Stats.Max
		if -p.Stats.Min > limit {
			limit = -p.Stats.Min
		}
		if limit == 0 {
			limit = 1 // all-zero pattern renders all white
		}
	}

	white := colorful.Color{R: 1, G: 1, B: 1}
	red := colorful.Color{R: 0.706, G: 0.016, B: 0.150}
	blue := colorful.Color{R: 0.230, G: 0.299, B: 0.754}

	width, height := int(p.Naxisn[0]), int(p.Naxisn[1])
	img := image.NewRGBA(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			v := p.Data[yoffset+x] / limit
			if math.IsNaN(float64(v)) {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			if v < -1 {
				v = -1
			}
			var col colorful.Color
			if v >= 0 {
				col = white.BlendLab(red, float64(v)).Clamped()
			} else {
				col = white.BlendLab(blue, float64(-v)).Clamped()
			}
			r, g, b := col.RGB255()
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	return png.Encode(writer, img)
}

// Returns display scaling bounds for a pattern: the approximate 0.5th and
// 99.5th intensity percentiles, estimated on a random sample. Falls back
// to the full min/max range when the percentiles coincide, e.g. for
// mostly masked-out patterns.
func AutoScale(p *cube.Pattern) (min, max float32) {
	numSamples := 1024
	if numSamples > len(p.Data) {
		numSamples = len(p.Data)
	}
	samples := make([]float32, numSamples)
	min = stats.FastApproxPercentile(p.Data, samples, 0.005)
	max = stats.FastApproxPercentile(p.Data, samples, 0.995)
	if min >= max {
		min, max = p.Stats.Min, p.Stats.Max
	}
	if min >= max {
		min, max = 0, 1
	}
	return min, max
}
