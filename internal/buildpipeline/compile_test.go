package buildpipeline

import (
	"bytes"
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimak2/noir/internal/backend"
	"github.com/pryimak2/noir/internal/circuit"
	"github.com/pryimak2/noir/internal/diag"
	"github.com/pryimak2/noir/internal/driver"
	"github.com/pryimak2/noir/internal/observ"
	"github.com/pryimak2/noir/internal/project"
	"github.com/pryimak2/noir/internal/project/dag"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) of(pkg string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Package == pkg {
			out = append(out, ev)
		}
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

type pkgDef struct {
	kind string
	deps map[string]string
	src  string
}

// workspace writes a workspace with the given members and returns the path
// of its manifest.
func workspace(t *testing.T, members map[string]pkgDef) string {
	t.Helper()
	dir := t.TempDir()
	list := ""
	for _, name := range slices.Sorted(maps.Keys(members)) {
		list += `"` + name + `", `
	}
	writeFile(t, filepath.Join(dir, project.ManifestName), "[workspace]\nmembers = ["+list+"]\n")

	for name, def := range members {
		manifest := "[package]\nname = \"" + name + "\"\ntype = \"" + def.kind + "\"\n"
		if len(def.deps) > 0 {
			manifest += "\n[dependencies]\n"
			for dep, path := range def.deps {
				manifest += dep + " = { path = \"" + path + "\" }\n"
			}
		}
		writeFile(t, filepath.Join(dir, name, project.ManifestName), manifest)
		entry := "src/main.nr"
		if def.kind == "lib" {
			entry = "src/lib.nr"
		}
		writeFile(t, filepath.Join(dir, name, filepath.FromSlash(entry)), def.src)
	}
	return filepath.Join(dir, project.ManifestName)
}

func resolve(t *testing.T, manifest string) *project.Workspace {
	t.Helper()
	ws, err := project.ResolveWorkspace(manifest, project.Selection{All: true})
	require.NoError(t, err)
	return ws
}

var healthy = map[string]pkgDef{
	"app": {kind: "bin", deps: map[string]string{"math": "../math"}, src: `
fn main(x: Field, y: pub Field) -> pub Field {
    assert(x != y);
    math::double(x) + math::incr(y)
}
`},
	"math": {kind: "lib", deps: map[string]string{"util": "../util"}, src: `
fn double(x: Field) -> Field { x * 2 }
fn incr(x: Field) -> Field { x + util::one() }
`},
	"util":  {kind: "lib", src: `fn one() -> Field { 1 }`},
	"token": {kind: "contract", src: tokenSrc},
}

const tokenSrc = `
contract Token {
    #[event] struct Transfer { from: Field, amount: u64 }
    open fn transfer(a: Field, b: Field, c: Field, d: Field) -> Field { a + b + c + d }
    #[internal] secret fn mint(a: u64) -> u64 { a }
}
`

func request(ws *project.Workspace, report *bytes.Buffer) *CompileRequest {
	return &CompileRequest{
		Workspace: ws,
		Options:   driver.CompileOptions{Output: &bytes.Buffer{}},
		Version:   "1.0.0+test",
		Jobs:      2,
		Report:    report,
	}
}

func byName(res *Result) map[string]PackageResult {
	out := make(map[string]PackageResult)
	for _, p := range res.Packages {
		out[p.Package.Name] = p
	}
	return out
}

func TestPreparePackage(t *testing.T) {
	ws := resolve(t, workspace(t, map[string]pkgDef{
		"app":  {kind: "bin", deps: map[string]string{"math": "../math", "util": "../util"}, src: `fn main() {}`},
		"math": {kind: "lib", deps: map[string]string{"util": "../util"}, src: `fn double(x: Field) -> Field { x * 2 }`},
		"util": {kind: "lib", src: `fn one() -> Field { 1 }`},
	}))
	var app *project.Package
	for _, p := range ws.Members {
		if p.Name == "app" {
			app = p
		}
	}
	require.NotNil(t, app)

	ctx, root, err := PreparePackage(app, "v")
	require.NoError(t, err)
	assert.Equal(t, 4, ctx.Graph.Len(), "std, app, math and util once")
	assert.Equal(t, "v", ctx.Version)

	names := func(id dag.CrateID) []dag.CrateName {
		var out []dag.CrateName
		for _, d := range ctx.Graph.Deps(id) {
			out = append(out, d.Name)
		}
		return out
	}
	assert.ElementsMatch(t, []dag.CrateName{dag.StdlibName, "math", "util"}, names(root))
	mathID, ok := ctx.Graph.DepByName(root, "math")
	require.True(t, ok)
	assert.ElementsMatch(t, []dag.CrateName{dag.StdlibName, "util"}, names(mathID))
	utilFromApp, _ := ctx.Graph.DepByName(root, "util")
	utilFromMath, _ := ctx.Graph.DepByName(mathID, "util")
	assert.Equal(t, utilFromApp, utilFromMath)
}

func TestPreparePackageMissingEntry(t *testing.T) {
	_, _, err := PreparePackage(&project.Package{Name: "ghost", Entry: filepath.Join(t.TempDir(), "src", "main.nr")}, "v")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompileWorkspace(t *testing.T) {
	ws := resolve(t, workspace(t, healthy))
	var report bytes.Buffer
	sink := &recorder{}
	req := request(ws, &report)
	req.Progress = sink
	req.Timer = observ.NewTimer()

	res, err := CompileWorkspace(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Packages, 4)
	assert.Empty(t, res.Failed())
	assert.Empty(t, report.String())

	pkgs := byName(res)
	assert.True(t, pkgs["math"].Skipped)
	assert.True(t, pkgs["util"].Skipped)

	app := pkgs["app"]
	require.NotNil(t, app.Program)
	assert.False(t, app.Cached)
	assert.Equal(t, "1.0.0+test", app.Program.Version)
	assert.FileExists(t, ws.ProgramArtifactPath(app.Package))
	assert.FileExists(t, ws.DebugArtifactPath("app"))
	assert.True(t, app.Timings.Has(StageCheck))
	assert.True(t, app.Timings.Has(StageSave))

	token := pkgs["token"]
	require.NotNil(t, token.Contract)
	assert.Len(t, token.Contract.Functions, 2)
	assert.FileExists(t, ws.ContractArtifactPath(token.Package, "Token"))
	for _, f := range token.Contract.Functions {
		for _, op := range f.Circuit.Opcodes {
			if op.Kind == circuit.OpAssertZero {
				assert.LessOrEqual(t, op.Expr.Width(), backend.Default().Language.Width)
			}
		}
	}

	events := sink.of("app")
	require.NotEmpty(t, events)
	assert.Equal(t, StatusQueued, events[0].Status)
	assert.Equal(t, StatusDone, events[len(events)-1].Status)
	var stages []Stage
	for _, ev := range events {
		if ev.Status == StatusWorking {
			stages = append(stages, ev.Stage)
		}
	}
	assert.Equal(t, []Stage{StageCheck, StageCompile, StageOptimize, StageSave}, stages)
	assert.NotEmpty(t, req.Timer.Report().Phases)
}

func TestCompileWorkspaceReusesArtifacts(t *testing.T) {
	ws := resolve(t, workspace(t, healthy))
	var report bytes.Buffer

	_, err := CompileWorkspace(context.Background(), request(ws, &report))
	require.NoError(t, err)

	res, err := CompileWorkspace(context.Background(), request(ws, &report))
	require.NoError(t, err)
	assert.True(t, byName(res)["app"].Cached)

	forced := request(ws, &report)
	forced.Force = true
	res, err = CompileWorkspace(context.Background(), forced)
	require.NoError(t, err)
	assert.False(t, byName(res)["app"].Cached)

	upgraded := request(ws, &report)
	upgraded.Version = "2.0.0+test"
	res, err = CompileWorkspace(context.Background(), upgraded)
	require.NoError(t, err)
	app := byName(res)["app"]
	assert.False(t, app.Cached, "an artifact of another compiler version is recompiled")
	assert.Equal(t, "2.0.0+test", app.Program.Version)
}

func TestCompileWorkspaceFailureDoesNotStopSiblings(t *testing.T) {
	members := map[string]pkgDef{
		"app":    healthy["app"],
		"math":   healthy["math"],
		"util":   healthy["util"],
		"broken": {kind: "bin", src: `fn main(x: Field) -> pub Field { y }`},
		"empty":  {kind: "contract", src: `fn main() {}`},
	}
	ws := resolve(t, workspace(t, members))
	var report bytes.Buffer

	res, err := CompileWorkspace(context.Background(), request(ws, &report))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPackagesFailed)
	assert.ErrorContains(t, err, "broken: ")

	pkgs := byName(res)
	require.NotNil(t, pkgs["app"].Program, "siblings still compile")
	assert.FileExists(t, ws.ProgramArtifactPath(pkgs["app"].Package))

	broken := pkgs["broken"]
	require.Error(t, broken.Err)
	require.NotEmpty(t, broken.Diagnostics)
	assert.Equal(t, diag.ResUnresolvedName, broken.Diagnostics[0].Code)

	empty := pkgs["empty"]
	require.Len(t, empty.Diagnostics, 1)
	assert.Equal(t, diag.DrvNoContract, empty.Diagnostics[0].Code)

	assert.Len(t, res.Failed(), 2)
	assert.Contains(t, report.String(), "cannot find value `y` in this scope")
	assert.Contains(t, report.String(), "does not contain any contracts")
}

func TestCompileWorkspacePrintsInOrder(t *testing.T) {
	ws := resolve(t, workspace(t, map[string]pkgDef{
		"a": {kind: "bin", src: `fn main(x: Field) -> pub Field { x * x }`},
		"b": {kind: "bin", src: `fn main(x: Field) -> pub Field { x + 1 }`},
	}))
	var out, report bytes.Buffer
	req := request(ws, &report)
	req.Options = driver.CompileOptions{PrintACIR: true, Output: &out}
	req.Jobs = 4

	_, err := CompileWorkspace(context.Background(), req)
	require.NoError(t, err)
	first := bytes.Index(out.Bytes(), []byte("(1, _1, _1)"))
	second := bytes.Index(out.Bytes(), []byte("(1, _1) (-1, _2) 1"))
	require.GreaterOrEqual(t, first, 0, out.String())
	require.GreaterOrEqual(t, second, 0, out.String())
	assert.Less(t, first, second)
}

func TestCompileWorkspaceDenyWarnings(t *testing.T) {
	ws := resolve(t, workspace(t, map[string]pkgDef{
		"app": {kind: "bin", src: `fn main(x: Field) -> pub Field { let unused = 1; x }`},
	}))

	var report bytes.Buffer
	res, err := CompileWorkspace(context.Background(), request(ws, &report))
	require.NoError(t, err)
	assert.Len(t, res.Packages[0].Diagnostics, 1)
	assert.Contains(t, report.String(), "unused variable `unused`")

	report.Reset()
	silenced := request(ws, &report)
	silenced.Options.SilenceWarnings = true
	silenced.Force = true
	_, err = CompileWorkspace(context.Background(), silenced)
	require.NoError(t, err)
	assert.Empty(t, report.String())

	denied := request(ws, &report)
	denied.Options.DenyWarnings = true
	denied.Force = true
	_, err = CompileWorkspace(context.Background(), denied)
	assert.ErrorIs(t, err, ErrPackagesFailed)
}

func TestCheckWorkspace(t *testing.T) {
	ws := resolve(t, workspace(t, map[string]pkgDef{
		"app":  {kind: "bin", deps: map[string]string{"math": "../math"}, src: `fn main(x: Field) -> pub Field { math::double(x) }`},
		"math": {kind: "lib", src: `fn double(x: Field) -> Field { let unused = 3; x * 2 }`},
	}))
	var report bytes.Buffer
	res, err := CheckWorkspace(context.Background(), request(ws, &report))
	require.NoError(t, err)

	pkgs := byName(res)
	assert.False(t, pkgs["math"].Skipped, "libraries are checked")
	require.Len(t, pkgs["math"].Diagnostics, 1)
	assert.Equal(t, diag.ResUnusedVariable, pkgs["math"].Diagnostics[0].Code)
	assert.Nil(t, pkgs["app"].Program)
	assert.NoFileExists(t, ws.ProgramArtifactPath(pkgs["app"].Package))
}

func TestCompileWorkspaceCancelled(t *testing.T) {
	ws := resolve(t, workspace(t, map[string]pkgDef{
		"app": {kind: "bin", src: `fn main() {}`},
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var report bytes.Buffer
	res, err := CompileWorkspace(ctx, request(ws, &report))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, res.Packages[0].Err, context.Canceled)
}

func TestCompileWorkspaceRejectsMissingWorkspace(t *testing.T) {
	_, err := CompileWorkspace(context.Background(), &CompileRequest{})
	assert.Error(t, err)
	_, err = CheckWorkspace(context.Background(), nil)
	assert.Error(t, err)
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{Package: "a", Stage: StageSave, Status: StatusDone})
	assert.Equal(t, "a", (<-ch).Package)
	ChannelSink{}.OnEvent(Event{})
}
