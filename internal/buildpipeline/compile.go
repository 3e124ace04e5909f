package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/pryimak2/noir/internal/artifact"
	"github.com/pryimak2/noir/internal/backend"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/diagfmt"
	"github.com/pryimak2/noir/internal/driver"
	"github.com/pryimak2/noir/internal/observ"
	"github.com/pryimak2/noir/internal/project"
	"github.com/pryimak2/noir/internal/project/dag"
	"github.com/pryimak2/noir/internal/source"
	"github.com/pryimak2/noir/internal/version"
)

var log = commonlog.GetLogger("nargo.buildpipeline")

// ErrPackagesFailed is returned when at least one package failed.
var ErrPackagesFailed = errors.New("package(s) failed")

// CompileRequest configures a workspace compilation.
type CompileRequest struct {
	Workspace *project.Workspace
	Options   driver.CompileOptions
	// Backend optimizes the circuits; nil means backend.Default().
	Backend *backend.Backend
	// Version is the producer version; empty means version.ArtifactVersion().
	Version string
	// Force ignores cached artifacts.
	Force bool
	// Jobs limits how many packages compile at once; <= 0 means GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
	Timer    *observ.Timer
	// Report receives rendered diagnostics; nil means os.Stderr.
	Report     io.Writer
	ReportOpts diagfmt.ReportOpts
}

func (req CompileRequest) withDefaults() *CompileRequest {
	if req.Backend == nil {
		req.Backend = backend.Default()
	}
	if req.Version == "" {
		req.Version = version.ArtifactVersion()
	}
	if req.Jobs <= 0 {
		req.Jobs = runtime.GOMAXPROCS(0)
	}
	if req.Report == nil {
		req.Report = os.Stderr
	}
	return &req
}

// PackageResult is the outcome of one package.
type PackageResult struct {
	Package *project.Package
	// Skipped is set for libraries, which have nothing to compile.
	Skipped bool
	// Cached is set when the previous artifact was reused.
	Cached   bool
	Program  *driver.CompiledProgram
	Contract *driver.CompiledContract
	// Diagnostics are the warnings on success and everything on failure.
	Diagnostics []diag.Diagnostic
	// Files resolves the spans of Diagnostics.
	Files *source.FileSet
	// Output is what the package printed (--print-acir and traces).
	Output  string
	Err     error
	Timings Timings
}

// Result holds one PackageResult per selected package, in workspace order.
type Result struct {
	Packages []PackageResult
}

// Failed returns the packages that failed.
func (r *Result) Failed() []PackageResult {
	var out []PackageResult
	for _, p := range r.Packages {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// CompileWorkspace compiles the selected binary and contract packages in
// parallel, each in its own session. Libraries are skipped. A failing
// package does not stop the others; every package is reported in workspace
// order and the call fails at the end if any package failed.
func CompileWorkspace(ctx context.Context, req *CompileRequest) (*Result, error) {
	if req == nil || req.Workspace == nil {
		return nil, errors.New("missing workspace")
	}
	return run(ctx, req.withDefaults(), (*job).compile)
}

// CheckWorkspace runs only the check phase for every selected package,
// libraries included.
func CheckWorkspace(ctx context.Context, req *CompileRequest) (*Result, error) {
	if req == nil || req.Workspace == nil {
		return nil, errors.New("missing workspace")
	}
	return run(ctx, req.withDefaults(), (*job).check)
}

func run(ctx context.Context, req *CompileRequest, body func(*job, *driver.Context, dag.CrateID) error) (*Result, error) {
	pkgs := req.Workspace.Selected
	res := &Result{Packages: make([]PackageResult, len(pkgs))}
	for _, pkg := range pkgs {
		emit(req.Progress, pkg.Name, StageCheck, StatusQueued, nil, 0)
	}

	var g errgroup.Group
	g.SetLimit(req.Jobs)
	for i, pkg := range pkgs {
		g.Go(func() error {
			j := &job{req: req, res: &res.Packages[i]}
			j.run(ctx, pkg, body)
			return nil
		})
	}
	_ = g.Wait()
	return res, finish(req, res)
}

func finish(req *CompileRequest, res *Result) error {
	out := req.Options.Output
	if out == nil {
		out = os.Stdout
	}
	var errs []error
	for _, p := range res.Packages {
		if p.Output != "" {
			_, _ = io.WriteString(out, p.Output)
		}
		if len(p.Diagnostics) > 0 {
			diagfmt.ReportAll(req.Report, p.Files, p.Diagnostics, req.Options.DenyWarnings, req.Options.SilenceWarnings, req.ReportOpts)
		}
		if p.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Package.Name, p.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	head := fmt.Errorf("%w: %d of %d", ErrPackagesFailed, len(errs), len(res.Packages))
	return errors.Join(append([]error{head}, errs...)...)
}

type job struct {
	req   *CompileRequest
	res   *PackageResult
	stage Stage
	out   bytes.Buffer
}

func (j *job) run(ctx context.Context, pkg *project.Package, body func(*job, *driver.Context, dag.CrateID) error) {
	j.res.Package = pkg
	j.stage = StageCheck
	start := time.Now()

	err := ctx.Err()
	if err == nil {
		log.Infof("%s: started", pkg.Name)
		var (
			dctx *driver.Context
			root dag.CrateID
		)
		dctx, root, err = PreparePackage(pkg, j.req.Version)
		if err == nil {
			dctx.Timer = j.req.Timer
			j.res.Files = dctx.Files
			err = body(j, dctx, root)
		}
	}
	j.res.Output = j.out.String()

	elapsed := time.Since(start)
	if err != nil {
		if diags, ok := driver.DiagnosticsOf(err); ok {
			j.res.Diagnostics = diags
		}
		j.res.Err = err
		log.Infof("%s: failed in %s: %s", pkg.Name, elapsed, err)
		emit(j.req.Progress, pkg.Name, j.stage, StatusError, err, elapsed)
		return
	}
	log.Infof("%s: finished in %s", pkg.Name, elapsed)
	emit(j.req.Progress, pkg.Name, j.stage, StatusDone, nil, elapsed)
}

// step runs fn as stage and records its duration.
func (j *job) step(stage Stage, fn func() error) error {
	j.stage = stage
	emit(j.req.Progress, j.res.Package.Name, stage, StatusWorking, nil, 0)
	start := time.Now()
	err := fn()
	j.res.Timings.Set(stage, time.Since(start))
	return err
}

func (j *job) options() driver.CompileOptions {
	opts := j.req.Options
	opts.Output = &j.out
	return opts
}

func (j *job) check(dctx *driver.Context, root dag.CrateID) error {
	return j.step(StageCheck, func() error {
		_, warnings, err := driver.CheckCrate(dctx, root, j.req.Options.DenyWarnings)
		j.res.Diagnostics = warnings
		return err
	})
}

func (j *job) compile(dctx *driver.Context, root dag.CrateID) error {
	pkg := j.res.Package
	switch {
	case pkg.IsLibrary():
		j.res.Skipped = true
		log.Infof("%s: library, nothing to compile", pkg.Name)
		return nil
	case pkg.IsContract():
		return j.contract(dctx, root)
	}
	return j.program(dctx, root)
}

func (j *job) program(dctx *driver.Context, root dag.CrateID) error {
	ws, pkg := j.req.Workspace, j.res.Package
	path, debugPath := ws.ProgramArtifactPath(pkg), ws.DebugArtifactPath(pkg.Name)

	force := j.req.Force
	var cached *driver.CompiledProgram
	if !force {
		cached = artifact.LoadCachedProgram(path, debugPath)
	}
	if cached != nil && cached.Version != j.req.Version {
		log.Infof("%s: artifact was produced by %q, recompiling", pkg.Name, cached.Version)
		force = true
	}

	if err := j.check(dctx, root); err != nil {
		return err
	}
	var prog *driver.CompiledProgram
	err := j.step(StageCompile, func() (err error) {
		prog, j.res.Diagnostics, err = driver.CompileMain(dctx, root, j.options(), cached, force)
		return err
	})
	if err != nil {
		return err
	}
	if cached != nil && prog == cached {
		j.res.Cached = true
		j.res.Program = prog
		return nil
	}

	if err := j.step(StageOptimize, func() (err error) {
		prog, err = j.req.Backend.OptimizeProgram(prog)
		return err
	}); err != nil {
		return err
	}
	j.res.Program = prog
	return j.step(StageSave, func() error {
		return artifact.SaveProgram(path, debugPath, prog, j.req.Backend.Name)
	})
}

func (j *job) contract(dctx *driver.Context, root dag.CrateID) error {
	if err := j.check(dctx, root); err != nil {
		return err
	}
	var contract *driver.CompiledContract
	err := j.step(StageCompile, func() (err error) {
		contract, j.res.Diagnostics, err = driver.CompileContract(dctx, root, j.options())
		return err
	})
	if err != nil {
		return err
	}
	if err := j.step(StageOptimize, func() (err error) {
		contract, err = j.req.Backend.OptimizeContract(contract)
		return err
	}); err != nil {
		return err
	}
	j.res.Contract = contract

	ws, pkg := j.req.Workspace, j.res.Package
	return j.step(StageSave, func() error {
		return artifact.SaveContract(
			ws.ContractArtifactPath(pkg, contract.Name),
			ws.DebugArtifactPath(pkg.Name+"-"+contract.Name),
			contract, j.req.Backend.Name)
	})
}
