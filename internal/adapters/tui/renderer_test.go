package tui_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/tui"
)

func TestRenderer_ForwardsEvents(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	model := tui.NewModel(&bytes.Buffer{}).WithoutTick()

	r := tui.NewRenderer(&model,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
	require.NoError(t, r.Start(t.Context()))

	start := time.Now()
	r.OnPlanEmit([]string{"sass"}, nil, []string{"sass"})
	r.OnTaskStart("s1", "", "sass", start)
	r.OnTaskLog("s1", []byte("done\n"))
	r.OnTaskComplete("s1", start.Add(time.Second), nil)
	r.OnRunComplete("ab12", time.Second, nil)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	m := r.Model()
	require.Len(t, m.Tasks, 1)
	assert.Equal(t, tui.StatusDone, m.Tasks[0].Status)
	assert.Equal(t, []string{"done"}, m.Tasks[0].Log.Lines())
	assert.Equal(t, 1, m.Runs)
}
