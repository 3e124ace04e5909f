// Package diag defines the diagnostic model shared by every compilation phase.
//
// A Diagnostic is a severity-tagged message with a Code and a primary
// source.Span. Diagnostics that are not tied to source text (a crate without
// an entry function, a package with the wrong number of contracts) are
// anchored to source.NoFileID.
//
// Phases emit through a Reporter; BagReporter collects into a Bag, which
// supports sorting and deduplication. HasErrors implements the pass/fail
// policy used by the check pipeline: under deny-warnings any diagnostic
// fails, otherwise at least one error is required.
//
// Package diag does no IO. Rendering lives in internal/diagfmt.
package diag
