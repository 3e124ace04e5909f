package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pryimak2/noir/internal/backend"
	"github.com/pryimak2/noir/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date,omitempty"`
	Backend   string `json:"backend"`
	Language  string `json:"language"`
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the compiler version and default backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "pretty":
				renderVersionPretty(cmd.OutOrStdout())
				return nil
			case "json":
				return renderVersionJSON(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(out io.Writer) {
	fmt.Fprint(out, version.Long())
	b := backend.Default()
	fmt.Fprintf(out, "backend = %s (%s)\n", b.Name, b.Language)
}

func renderVersionJSON(out io.Writer) error {
	b := backend.Default()
	commit := version.GitCommit
	if commit == "" {
		commit = "unknown"
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "nargo",
		Version:   version.Version,
		GitCommit: commit,
		BuildDate: version.BuildDate,
		Backend:   b.Name,
		Language:  b.Language.String(),
	})
}
