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


package cube

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Minimal binary container formats: a fixed magic, a format version,
// int32 axis sizes and a little-endian float32 payload.

var cubeMagic    =[4]byte{'P', '4', 'D', 'C'}
var patternMagic =[4]byte{'P', '2', 'D', 'P'}

const fileVersion uint32 = 1

// Reads a 4D datacube from the given file
func ReadDataCubeFile(fileName string) (c *DataCube, err error) {
	file, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer file.Close()

	c, err=ReadDataCube(bufio.NewReader(file))
	if err!=nil { return nil, errors.New(fmt.Sprintf("%s: %s", fileName, err.Error())) }
	c.FileName=fileName
	return c, nil
}

// Reads a 4D datacube from the given reader
func ReadDataCube(r io.Reader) (c *DataCube, err error) {
	var magic [4]byte
	if _, err=io.ReadFull(r, magic[:]); err!=nil { return nil, err }
	if magic!=cubeMagic { return nil, errors.New("not a P4DC datacube file") }

	var version uint32
	if err=binary.Read(r, binary.LittleEndian, &version); err!=nil { return nil, err }
	if version!=fileVersion { return nil, errors.New(fmt.Sprintf("unsupported datacube file version %d", version)) }

	var dims [4]int32
	if err=binary.Read(r, binary.LittleEndian, &dims); err!=nil { return nil, err }

	c, err=NewDataCube(dims[0], dims[1], dims[2], dims[3], nil)
	if err!=nil { return nil, err }
	if err=binary.Read(r, binary.LittleEndian, c.Data); err!=nil { return nil, err }
	return c, nil
}

// Writes the datacube to the given file
func (c *DataCube) WriteFile(fileName string) error {
	file, err:=os.Create(fileName)
	if err!=nil { return err }
	defer file.Close()

	w:=bufio.NewWriter(file)
	defer w.Flush()
	return c.Write(w)
}

// Writes the datacube to the given writer
func (c *DataCube) Write(w io.Writer) error {
	if _, err:=w.Write(cubeMagic[:]); err!=nil { return err }
	if err:=binary.Write(w, binary.LittleEndian, fileVersion); err!=nil { return err }
	dims:=[4]int32{c.RNx, c.RNy, c.QNx, c.QNy}
	if err:=binary.Write(w, binary.LittleEndian, &dims); err!=nil { return err }
	return binary.Write(w, binary.LittleEndian, c.Data)
}

// Reads a single 2D pattern from the given file
func ReadPatternFile(fileName string, id int) (p *Pattern, err error) {
	file, err:=os.Open(fileName)
	if err!=nil { return nil, err }
	defer file.Close()

	p, err=ReadPattern(bufio.NewReader(file))
	if err!=nil { return nil, errors.New(fmt.Sprintf("%s: %s", fileName, err.Error())) }
	p.ID, p.FileName=id, fileName
	return p, nil
}

// Reads a single 2D pattern from the given reader
func ReadPattern(r io.Reader) (p *Pattern, err error) {
	var magic [4]byte
	if _, err=io.ReadFull(r, magic[:]); err!=nil { return nil, err }
	if magic!=patternMagic { return nil, errors.New("not a P2DP pattern file") }

	var version uint32
	if err=binary.Read(r, binary.LittleEndian, &version); err!=nil { return nil, err }
	if version!=fileVersion { return nil, errors.New(fmt.Sprintf("unsupported pattern file version %d", version)) }

	var dims [2]int32
	if err=binary.Read(r, binary.LittleEndian, &dims); err!=nil { return nil, err }
	if dims[0]<=0 || dims[1]<=0 { return nil, errors.New(fmt.Sprintf("invalid pattern dimensions %dx%d", dims[0], dims[1])) }

	p=NewPattern(dims[:], nil)
	if err=binary.Read(r, binary.LittleEndian, p.Data); err!=nil { return nil, err }
	p.UpdateStats()
	return p, nil
}

// Writes the pattern to the given file
func (p *Pattern) WriteFile(fileName string) error {
	file, err:=os.Create(fileName)
	if err!=nil { return err }
	defer file.Close()

	w:=bufio.NewWriter(file)
	defer w.Flush()
	return p.Write(w)
}

// Writes the pattern to the given writer
func (p *Pattern) Write(w io.Writer) error {
	if len(p.Naxisn)!=2 {
		return errors.New(fmt.Sprintf("cannot write %d-dimensional pattern", len(p.Naxisn)))
	}
	if _, err:=w.Write(patternMagic[:]); err!=nil { return err }
	if err:=binary.Write(w, binary.LittleEndian, fileVersion); err!=nil { return err }
	dims:=[2]int32{p.Naxisn[0], p.Naxisn[1]}
	if err:=binary.Write(w, binary.LittleEndian, &dims); err!=nil { return err }
	return binary.Write(w, binary.LittleEndian, p.Data)
}
