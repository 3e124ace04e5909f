package ui

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pryimak2/noir/internal/buildpipeline"
)

func TestApplyEventTracksPackages(t *testing.T) {
	m := NewProgressModel("compile", []string{"app", "token"}, nil).(*progressModel)
	assert.InDelta(t, 0.0, m.percent(), 1e-9)

	m.applyEvent(buildpipeline.Event{Package: "app", Stage: buildpipeline.StageCompile, Status: buildpipeline.StatusWorking})
	assert.Equal(t, "compiling", m.items[0].status)
	assert.InDelta(t, 0.2, m.percent(), 1e-9)

	m.applyEvent(buildpipeline.Event{Package: "app", Stage: buildpipeline.StageSave, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Package: "token", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusError})
	assert.Equal(t, "done", m.items[0].status)
	assert.Equal(t, "error", m.items[1].status)
	assert.Equal(t, 2, m.finished())
	assert.InDelta(t, 1.0, m.percent(), 1e-9)

	// unknown packages are ignored
	assert.Nil(t, m.applyEvent(buildpipeline.Event{Package: "ghost", Status: buildpipeline.StatusDone}))
}

func TestViewListsPackages(t *testing.T) {
	m := NewProgressModel("compile", []string{"app", "token"}, nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{Package: "token", Stage: buildpipeline.StageOptimize, Status: buildpipeline.StatusWorking})

	view := m.View()
	assert.Contains(t, view, "compile (0/2)")
	assert.Contains(t, view, "app")
	assert.Contains(t, view, "optimizing")
	assert.Contains(t, view, "queued")
}

func TestModelQuitsWhenEventsClose(t *testing.T) {
	events := make(chan buildpipeline.Event, 1)
	events <- buildpipeline.Event{Package: "app", Stage: buildpipeline.StageCheck, Status: buildpipeline.StatusWorking}
	close(events)

	m := NewProgressModel("check", []string{"app"}, events).(*progressModel)
	msg := m.listenForEvent()()
	require.IsType(t, eventMsg{}, msg)
	m.Update(msg)
	assert.Equal(t, "checking", m.items[0].status)

	msg = m.listenForEvent()()
	require.IsType(t, doneMsg{}, msg)
	_, cmd := m.Update(msg)
	assert.True(t, m.done)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "done: check")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	// the tail counts toward the column width
	wide := truncate("日本語テキスト", 10)
	assert.Equal(t, "日本語...", wide)
	assert.LessOrEqual(t, runewidth.StringWidth(wide), 10)
}
