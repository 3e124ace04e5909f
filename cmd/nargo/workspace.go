package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pryimak2/noir/internal/project"
)

func addWorkspaceFlags(cmd *cobra.Command) {
	cmd.Flags().String("program-dir", ".", "directory of the package or workspace to operate on")
	cmd.Flags().String("package", "", "name of the workspace member to operate on")
	cmd.Flags().Bool("workspace", false, "operate on every workspace member")
	cmd.MarkFlagsMutuallyExclusive("package", "workspace")
}

// resolveWorkspace finds the workspace around --program-dir. Without
// --package or --workspace a member directory selects that member and a
// workspace root selects its default member, or all of them.
func resolveWorkspace(cmd *cobra.Command) (*project.Workspace, error) {
	dir, err := cmd.Flags().GetString("program-dir")
	if err != nil {
		return nil, err
	}
	pkgName, err := cmd.Flags().GetString("package")
	if err != nil {
		return nil, err
	}
	all, err := cmd.Flags().GetBool("workspace")
	if err != nil {
		return nil, err
	}

	tomlPath, err := project.FindWorkspaceToml(dir)
	if err != nil {
		return nil, err
	}
	ws, err := project.ResolveWorkspace(tomlPath, project.Selection{All: all, Package: pkgName})
	if err != nil {
		return nil, err
	}
	if all || pkgName != "" {
		return ws, nil
	}

	nearest, ok, err := project.FindNargoToml(dir)
	if err != nil || !ok || nearest == tomlPath {
		return ws, err
	}
	memberRoot := filepath.Dir(nearest)
	for _, pkg := range ws.Members {
		if pkg.Root == memberRoot {
			ws.Selected = []*project.Package{pkg}
			break
		}
	}
	return ws, nil
}
