// Package buildpipeline compiles the packages of a workspace: one
// independent compilation session per package, run in parallel.
package buildpipeline

import "time"

// Stage describes a phase of one package's compilation.
type Stage string

const (
	// StageCheck is definition collection and type checking.
	StageCheck Stage = "check"
	// StageCompile is monomorphization and lowering.
	StageCompile Stage = "compile"
	// StageOptimize is the backend optimizer.
	StageOptimize Stage = "optimize"
	// StageSave writes the artifacts.
	StageSave Stage = "save"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the package is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the package is in Stage.
	StatusWorking Status = "working"
	// StatusDone indicates the package finished.
	StatusDone Status = "done"
	// StatusError indicates the package failed.
	StatusError Status = "error"
)

// Event reports progress for a package.
type Event struct {
	Package string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. It is called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations of one package.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
