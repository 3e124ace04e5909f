package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pryimak2/noir/internal/prof"
)

// setupProfiling starts the profiles requested by the persistent flags. The
// returned session may be nil; Stop on it is still safe.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	root := cmd.Root()
	var opts prof.Options
	for name, dst := range map[string]*string{
		"cpu-profile":   &opts.CPU,
		"mem-profile":   &opts.Mem,
		"runtime-trace": &opts.Trace,
	} {
		v, err := root.PersistentFlags().GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
	}
	if !opts.Enabled() {
		return nil, nil
	}
	return prof.Start(opts)
}
