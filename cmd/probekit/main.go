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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/debug"
	"strings"
	"time"
	pk "github.com/qstem/probekit/internal"
	"github.com/qstem/probekit/internal/ops"
	"github.com/qstem/probekit/internal/ops/template"
	"github.com/qstem/probekit/internal/probe"
	"github.com/qstem/probekit/internal/rest"
	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

const version = "0.1.0"

var totalMiBs=memory.TotalMemory()/1024/1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out  = flag.String("out", "out.p2d", "save output pattern to `file`")
var tif  = flag.String("tif", "%auto", "save 16-bit TIFF preview of output to `file`. `%auto` replaces suffix of output file with .tif")
var png  = flag.String("png", "", "save diverging colormap PNG of output to `file`, recommended for zero-sum kernels")
var log  = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")

var maskThreshold = flag.Float64("maskThreshold", float64(probe.DefaultMaskThreshold), "probe mask threshold relative to the probe maximum")
var maskExpansion = flag.Int64("maskExpansion", int64(probe.DefaultMaskExpansion), "probe mask dilation iterations to capture the probe tails")
var maskOpening   = flag.Int64("maskOpening", int64(probe.DefaultMaskOpening), "probe mask opening iterations to remove stray bright pixels")

var mode        = flag.String("mode", template.KernelGaussian, "kernel generation mode, one of plain, gaussian, trench")
var sigmaScale  = flag.Float64("sigmaScale", 2, "gaussian kernel width relative to the probe standard deviation")
var radius      = flag.Float64("radius", 0, "trench kernel inner radius in pixels, from the probe center")
var trenchWidth = flag.Float64("trenchWidth", 2, "trench kernel annulus width in pixels")
var blurWidth   = flag.Float64("blurWidth", 2, "trench kernel wall blur full width in pixels")

var cubeMemory  = flag.Int64("cubeMemory", int64((totalMiBs*7)/10), "total MiB of memory to use for datacube loading, default=0.7x physical memory")

var chroot = flag.String("chroot", "", "for serve command: change filesystem root to `directory` before serving, requires root")
var setuid = flag.Int64("setuid", -1, "for serve command: drop privileges to `uid` before serving, -1=no change")

func main() {
	logWriter:=os.Stdout
	debug.SetGCPercent(10)
	start:=time.Now()
	flag.Usage=func(){
 	    fmt.Fprintf(logWriter, `Probekit Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (probe|kernel|serve|legal|version|help) (scan.p4d | probe0.p2d ... proben.p2d)

Commands:
  probe   Average a vacuum scan datacube into a probe template
  kernel  Turn probe templates into convolution kernels
  serve   Run a REST API server for remote processing
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
	    flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log=="%auto" {
		if *out!="" {
			*log=strings.TrimSuffix(*out, filepath.Ext(*out))+".log"
		} else {
			*log=""
		}
	}
	if *log!="" {
		err:=pk.LogAlsoToFile(*log)
		if err!=nil { pk.LogFatalf("Unable to open logfile '%s'\n", *log) }
	}

	// Also auto-select TIFF output target
	if *tif=="%auto" {
		if *out!="" {
			*tif=strings.TrimSuffix(*out, filepath.Ext(*out))+".tif"
		} else {
			*tif=""
		}
	}

	// Enable CPU profiling if flagged
    if *cpuprofile != "" {
        f, err := os.Create(*cpuprofile)
        if err != nil {
            pk.LogFatal("Could not create CPU profile: ", err)
        }
        defer f.Close()
        if err := pprof.StartCPUProfile(f); err != nil {
            pk.LogFatal("Could not start CPU profile: ", err)
        }
        defer pprof.StopCPUProfile()
    }

    args:=flag.Args()
    if len(args)<1 {
    	flag.Usage()
    	return
    }
    if args[0]=="probe" || args[0]=="kernel" {
		fmt.Fprintf(logWriter, "Probekit v%s on %s with %d threads\n", version, cpuid.CPU.BrandName, runtime.GOMAXPROCS(0))
	}

	var err error

	// run actions
    switch args[0] {
    case "serve":
    	rest.MakeSandbox(*chroot, int(*setuid))
    	rest.Serve();

    case "probe":
    	err=cmdProbe(args[1:], logWriter)

	case "kernel":
		err=cmdKernel(args[1:], logWriter)

    case "legal":
    	cmdLegal()

    case "version":
    	fmt.Fprintf(logWriter, "Version %s\n", version)

    case "help", "?":
    	flag.Usage()

    default:
    	fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
    	flag.Usage()
    	return
    }

	now:=time.Now()
	elapsed:=now.Sub(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
    if *memprofile != "" {
        f, err := os.Create(*memprofile)
        if err != nil {
            pk.LogFatal("Could not create memory profile: ", err)
        }
        defer f.Close()
        runtime.GC() // get up-to-date statistics
        if err := pprof.Lookup("allocs").WriteTo(f,0); err != nil {
            pk.LogFatal("Could not write allocation profile: ", err)
        }
    }

    if err!=nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(-1)
	}
    pk.LogSync()
}

// Average a vacuum scan datacube into a probe template and save it
func cmdProbe(args []string, logWriter *os.File) error {
	if len(args)!=1 {
		return fmt.Errorf("probe command needs exactly one datacube file, got %d", len(args))
	}

	opProbe:=template.NewOpVacuumProbe(args[0])
	opProbe.MaskThreshold=float32(*maskThreshold)
	opProbe.MaskExpansion=int32(*maskExpansion)
	opProbe.MaskOpening  =int32(*maskOpening)

	seq:=ops.NewOpSequence(opProbe, ops.NewOpSave(*out), ops.NewOpSave(*tif), ops.NewOpSave(*png))
	return runSequence(seq, logWriter)
}

// Turn saved probe templates into convolution kernels
func cmdKernel(args []string, logWriter *os.File) error {
	if len(args)<1 {
		return fmt.Errorf("kernel command needs at least one probe template file")
	}

	opKernel:=template.NewOpKernel(*mode, float32(*sigmaScale), float32(*radius), float32(*trenchWidth), float32(*blurWidth))
	seq:=ops.NewOpSequence(ops.NewOpLoadMany(args), opKernel, ops.NewOpSave(*out), ops.NewOpSave(*tif), ops.NewOpSave(*png))
	return runSequence(seq, logWriter)
}

// Build promises for the sequence, print its settings and materialize it
func runSequence(seq *ops.OpSequence, logWriter *os.File) error {
	m, err:=json.MarshalIndent(seq,"", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "\nProcessing with these settings:\n%s\n", string(m))

	c:=ops.NewContext(logWriter)
	c.CubeMemoryMB=int(*cubeMemory)
	promises, err:=seq.MakePromises(nil, c)
	if err!=nil { return err }
	_, err=ops.MaterializeAll(promises, c.MaxThreads, true)
	return err
}
