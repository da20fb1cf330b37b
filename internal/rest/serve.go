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


package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"github.com/gin-gonic/gin"

	"github.com/qstem/probekit/internal/ops"
	"github.com/qstem/probekit/internal/ops/template"
)


func Serve() {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",     getPing)
			v1.POST("/probe",    postProbe)
			v1.POST("/kernel",   postKernel)
			v1.POST("/pipeline", postPipeline)
		}
	}
	r.Run() // listen and serve on 0.0.0.0:8080
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m,err:=json.MarshalIndent(args, "", "  ")
	if err!=nil { return err }
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

// Switches the response to a streaming text/plain log and returns its writer
func beginTextLog(c *gin.Context, args interface{}) io.Writer {
	logWriter := c.Writer
	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err:=printArgs(logWriter, "Arguments:\n", "\n", args); err!=nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
	}
	return logWriter
}

// Builds promises for the sequence, materializes them and streams errors to the log
func runSequence(seq *ops.OpSequence, logWriter io.Writer) {
	c:=ops.NewContext(logWriter)
	promises, err:=seq.MakePromises(nil, c)
	if err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		return
	}
	if _, err:=ops.MaterializeAll(promises, c.MaxThreads, true); err!=nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	}
}

type postProbeArgs struct {
	FileName      string  `json:"fileName"`
	MaskThreshold float32 `json:"maskThreshold"`
	MaskExpansion int32   `json:"maskExpansion"`
	MaskOpening   int32   `json:"maskOpening"`
	Save          string  `json:"save"`
}

func postProbe(c *gin.Context)  {
	var args postProbeArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}
	logWriter:=beginTextLog(c, args)

	opProbe:=template.NewOpVacuumProbe(args.FileName)
	if args.MaskThreshold>0 { opProbe.MaskThreshold=args.MaskThreshold }
	if args.MaskExpansion>0 { opProbe.MaskExpansion=args.MaskExpansion }
	if args.MaskOpening>0   { opProbe.MaskOpening  =args.MaskOpening   }

	runSequence(ops.NewOpSequence(opProbe, ops.NewOpSave(args.Save)), logWriter)
	logWriter.(http.Flusher).Flush()
}

type postKernelArgs struct {
	FileName    string  `json:"fileName"`
	Mode        string  `json:"mode"`
	SigmaScale  float32 `json:"sigmaScale"`
	Radius      float32 `json:"radius"`
	TrenchWidth float32 `json:"trenchWidth"`
	BlurWidth   float32 `json:"blurWidth"`
	Save        string  `json:"save"`
}

// Fills omitted kernel parameters with the same defaults the CLI uses,
// so a bare {"fileName":...} request yields a valid gaussian kernel
func (args *postKernelArgs) setDefaults() {
	if args.Mode==""         { args.Mode=template.KernelGaussian }
	if args.SigmaScale<=0    { args.SigmaScale=2 }
	if args.TrenchWidth<=0   { args.TrenchWidth=2 }
	if args.BlurWidth<=0     { args.BlurWidth=2 }
}

func postKernel(c *gin.Context) {
	var args postKernelArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}
	logWriter:=beginTextLog(c, args)

	args.setDefaults()
	opKernel:=template.NewOpKernel(args.Mode, args.SigmaScale, args.Radius, args.TrenchWidth, args.BlurWidth)

	runSequence(ops.NewOpSequence(ops.NewOpLoad(0, args.FileName), opKernel, ops.NewOpSave(args.Save)), logWriter)
	logWriter.(http.Flusher).Flush()
}

// Accepts a full operator sequence as polymorphic JSON, e.g.
// {"steps":[{"type":"vacuumProbe", ...},{"type":"kernel", ...},{"type":"save", ...}]}
func postPipeline(c *gin.Context) {
	var seq ops.OpSequence
	if err:=c.ShouldBind(&seq); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error() } )
		return
	}
	logWriter:=beginTextLog(c, &seq)

	runSequence(&seq, logWriter)
	logWriter.(http.Flusher).Flush()
}
