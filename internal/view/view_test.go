package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/linkgrab/internal/session"
)

func TestModel_Lifecycle(t *testing.T) {
	m := NewModel()
	require.Equal(t, session.StateIdle, m.Status.State)
	require.False(t, m.Empty())

	m.SetInput("ex.com")
	m.SetIndicator(session.Status{State: session.StateInProgress})
	require.Equal(t, "Fetching...", m.StatusText())

	m.RenderLinks([]string{"https://a", "https://b"})
	m.SetIndicator(session.Status{State: session.StateSuccess, Count: 2})
	require.Equal(t, "Links: 2", m.StatusText())
	require.Equal(t, []string{"https://a", "https://b"}, m.Links)
	require.False(t, m.Empty())

	m.SetIndicator(session.Status{State: session.StateIdle})
	require.Nil(t, m.Links)
	require.False(t, m.Rendered)
	require.Equal(t, "ex.com", m.Input)
}

func TestModel_EmptyPlaceholder(t *testing.T) {
	m := NewModel()
	m.RenderLinks([]string{})
	m.SetIndicator(session.Status{State: session.StateSuccess})
	require.True(t, m.Empty())
}

func TestModel_ErrorKeepsRenderedLinks(t *testing.T) {
	m := NewModel()
	m.RenderLinks([]string{"https://a"})
	m.SetIndicator(session.Status{State: session.StateError, Message: "boom"})

	require.Equal(t, "Error: boom", m.StatusText())
	require.False(t, m.Status.State.Active())
	require.Equal(t, []string{"https://a"}, m.Links)
}

func TestModel_JSON(t *testing.T) {
	m := NewModel()
	m.Alert("Enter a URL.")

	b, err := json.Marshal(m)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"input": "",
		"links": null,
		"rendered": false,
		"status": {"state": "idle", "count": 0},
		"alerts": ["Enter a URL."]
	}`, string(b))
}

func TestConsole_RenderLinks(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut)

	c.RenderLinks([]string{"https://a.com", "https://b.com"})
	require.Equal(t, "🔗 https://a.com\n🔗 https://b.com\n", out.String())
}

func TestConsole_RenderNoLinks(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out)

	c.RenderLinks(nil)
	require.Equal(t, Placeholder+"\n", out.String())
}

func TestConsole_Indicator(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out)

	c.SetIndicator(session.Status{State: session.StateInProgress})
	c.SetIndicator(session.Status{State: session.StateSuccess, Count: 3})
	c.SetIndicator(session.Status{State: session.StateError, Message: "timeout"})
	c.SetIndicator(session.Status{State: session.StateIdle})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "Fetching...")
	require.Contains(t, lines[1], "Links: 3")
	require.Contains(t, lines[2], "Error: timeout")
	require.Contains(t, lines[3], "Links: —")
}

func TestConsole_AlertGoesToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut)

	c.SetInput("ignored")
	c.Alert("Enter a URL.")
	require.Empty(t, out.String())
	require.Equal(t, "Enter a URL.\n", errOut.String())
}
