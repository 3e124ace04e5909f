package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestArtifactVersion(t *testing.T) {
	override(t, "1.2.3", "", "")
	assert.Equal(t, "1.2.3", ArtifactVersion())

	override(t, "1.2.3", "abc123def456", "")
	assert.Equal(t, "1.2.3+abc123def456", ArtifactVersion())
}

func TestLong(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	override(t, "1.2.3", "", "")
	assert.Equal(t, "nargo version = 1.2.3\ngit commit = unknown\n", Long())

	override(t, "1.2.3", "abc", "2024-01-15T10:30:00Z")
	assert.Equal(t, "nargo version = 1.2.3\ngit commit = abc\nbuild date = 2024-01-15T10:30:00Z\n", Long())

	override(t, "dev", "", "")
	assert.Equal(t, "dev", Colored())
}
