package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pryimak2/noir/internal/buildpipeline"
	"github.com/pryimak2/noir/internal/diagfmt"
	"github.com/pryimak2/noir/internal/driver"
	"github.com/pryimak2/noir/internal/observ"
	"github.com/pryimak2/noir/internal/project"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags]",
		Short: "Compile the selected packages into circuit artifacts",
		Long:  "Compile binary and contract packages of a workspace and write their artifacts under target/.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, "nargo compile", buildpipeline.CompileWorkspace)
		},
	}
	addWorkspaceFlags(cmd)
	addCompileFlags(cmd)
	cmd.Flags().Bool("print-acir", false, "print every compiled circuit")
	cmd.Flags().Bool("show-ssa", false, "print the monomorphized program before lowering")
	cmd.Flags().Bool("show-brillig", false, "print the unconstrained calls of each circuit")
	cmd.Flags().Bool("force", false, "ignore existing artifacts and recompile")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags]",
		Short: "Type check the selected packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, "nargo check", buildpipeline.CheckWorkspace)
		},
	}
	addWorkspaceFlags(cmd)
	addCompileFlags(cmd)
	return cmd
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("deny-warnings", false, "treat warnings as errors")
	cmd.Flags().Bool("silence-warnings", false, "do not report warnings")
	cmd.MarkFlagsMutuallyExclusive("deny-warnings", "silence-warnings")
	cmd.Flags().Int("jobs", 0, "number of packages compiled in parallel (0 = GOMAXPROCS)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

// readCompileOptions reads the driver options; flags a command does not
// define stay false.
func readCompileOptions(cmd *cobra.Command) driver.CompileOptions {
	get := func(name string) bool {
		if cmd.Flags().Lookup(name) == nil {
			return false
		}
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return driver.CompileOptions{
		PrintACIR:       get("print-acir"),
		ShowSSA:         get("show-ssa"),
		ShowBrillig:     get("show-brillig"),
		DenyWarnings:    get("deny-warnings"),
		SilenceWarnings: get("silence-warnings"),
		Output:          cmd.OutOrStdout(),
	}
}

func runPipeline(cmd *cobra.Command, title string, run pipelineFunc) (err error) {
	ws, err := resolveWorkspace(cmd)
	if err != nil {
		return err
	}
	session, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := session.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	force := false
	if cmd.Flags().Lookup("force") != nil {
		force, _ = cmd.Flags().GetBool("force")
	}

	req := &buildpipeline.CompileRequest{
		Workspace: ws,
		Options:   readCompileOptions(cmd),
		Force:     force,
		Jobs:      jobs,
		Report:    cmd.ErrOrStderr(),
		ReportOpts: diagfmt.ReportOpts{
			Format: diagfmt.FormatPretty,
			Pretty: diagfmt.PrettyOpts{
				Color:     !color.NoColor,
				Context:   1,
				PathMode:  diagfmt.PathModeRelative,
				ShowNotes: true,
			},
		},
	}
	if showTimings {
		req.Timer = observ.NewTimer()
	}

	var res *buildpipeline.Result
	if shouldUseTUI(mode) && len(ws.Selected) > 0 {
		res, err = runWithUI(cmd.Context(), title, req, run)
	} else {
		res, err = run(cmd.Context(), req)
	}
	printSummary(cmd.OutOrStdout(), ws, res)
	if showTimings {
		printStageTimings(cmd.OutOrStdout(), res, req.Timer)
	}
	return err
}

func printSummary(out io.Writer, ws *project.Workspace, res *buildpipeline.Result) {
	if res == nil {
		return
	}
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	for _, p := range res.Packages {
		if p.Package == nil {
			continue
		}
		switch {
		case p.Err != nil:
			fmt.Fprintf(out, "%s %s\n", bad.Sprint("failed"), p.Package.Name)
		case p.Skipped:
			fmt.Fprintf(out, "%s %s (library)\n", ok.Sprint("checked"), p.Package.Name)
		case p.Program != nil:
			verb := "compiled"
			if p.Cached {
				verb = "fresh"
			}
			fmt.Fprintf(out, "%s %s -> %s (%d opcodes)\n", ok.Sprint(verb), p.Package.Name,
				relPath(ws.Root, ws.ProgramArtifactPath(p.Package)), len(p.Program.Circuit.Opcodes))
		case p.Contract != nil:
			names := make([]string, 0, len(p.Contract.Functions))
			for _, fn := range p.Contract.Functions {
				names = append(names, fn.Name)
			}
			fmt.Fprintf(out, "%s %s -> %s [%s]\n", ok.Sprint("compiled"), p.Package.Name,
				relPath(ws.Root, ws.ContractArtifactPath(p.Package, p.Contract.Name)), strings.Join(names, ", "))
		default:
			fmt.Fprintf(out, "%s %s\n", ok.Sprint("checked"), p.Package.Name)
		}
	}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
