package main

import (
	"bytes"
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pryimak2/noir/internal/buildpipeline"
	"github.com/pryimak2/noir/internal/ui"
)

type pipelineFunc func(context.Context, *buildpipeline.CompileRequest) (*buildpipeline.Result, error)

type pipelineOutcome struct {
	result *buildpipeline.Result
	err    error
}

// runWithUI drives run while a progress view owns the terminal. Diagnostics
// and printed circuits are buffered and flushed once the view has exited.
func runWithUI(ctx context.Context, title string, req *buildpipeline.CompileRequest, run pipelineFunc) (*buildpipeline.Result, error) {
	names := make([]string, 0, len(req.Workspace.Selected))
	for _, pkg := range req.Workspace.Selected {
		names = append(names, pkg.Name)
	}

	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan pipelineOutcome, 1)

	var report, output bytes.Buffer
	reqCopy := *req
	reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
	reqCopy.Report = &report
	reqCopy.Options.Output = &output

	go func() {
		res, err := run(ctx, &reqCopy)
		outcomeCh <- pipelineOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// keep the pipeline unblocked if the view quit early
	for range events {
	}
	outcome := <-outcomeCh

	_, _ = io.Copy(stdoutOf(req), &output)
	_, _ = io.Copy(reportOf(req), &report)
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

func stdoutOf(req *buildpipeline.CompileRequest) io.Writer {
	if req.Options.Output != nil {
		return req.Options.Output
	}
	return os.Stdout
}

func reportOf(req *buildpipeline.CompileRequest) io.Writer {
	if req.Report != nil {
		return req.Report
	}
	return os.Stderr
}
