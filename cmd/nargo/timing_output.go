package main

import (
	"fmt"
	"io"
	"time"

	"github.com/pryimak2/noir/internal/buildpipeline"
	"github.com/pryimak2/noir/internal/observ"
)

var timedStages = []buildpipeline.Stage{
	buildpipeline.StageCheck,
	buildpipeline.StageCompile,
	buildpipeline.StageOptimize,
	buildpipeline.StageSave,
}

func printStageTimings(out io.Writer, res *buildpipeline.Result, timer *observ.Timer) {
	if out == nil || res == nil {
		return
	}
	for _, p := range res.Packages {
		if p.Package == nil {
			continue
		}
		fmt.Fprintf(out, "%s:", p.Package.Name)
		for _, stage := range timedStages {
			if p.Timings.Has(stage) {
				fmt.Fprintf(out, " %s %.1f ms", stage, toMillis(p.Timings.Duration(stage)))
			}
		}
		fmt.Fprintf(out, " (total %.1f ms)\n", toMillis(p.Timings.Sum(timedStages...)))
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
