// Package main implements the nargo CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"github.com/pryimak2/noir/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nargo",
		Short:         "Noir circuit compiler",
		Long:          "nargo compiles Noir packages into arithmetic circuits with their ABI and debug information.",
		Version:       version.ArtifactVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, err := cmd.Flags().GetCount("verbose")
			if err != nil {
				return err
			}
			commonlog.Configure(verbosity, nil)

			colorValue, err := cmd.Flags().GetString("color")
			if err != nil {
				return err
			}
			enabled, err := readColorMode(colorValue)
			if err != nil {
				return err
			}
			color.NoColor = !enabled
			return nil
		},
	}

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().CountP("verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}

// readColorMode resolves --color against whether stdout is a terminal.
func readColorMode(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
