// Package view holds ViewSink implementations for the panel surfaces.
package view

import (
	"github.com/hpungsan/linkgrab/internal/session"
)

// Placeholder is shown when a fetch produced no links.
const Placeholder = "No links to display."

// Model records view updates so a surface can render them afterwards.
// A Model is not safe for concurrent use; create one per request.
type Model struct {
	Input    string         `json:"input"`
	Links    []string       `json:"links"`
	Rendered bool           `json:"rendered"`
	Status   session.Status `json:"status"`
	Alerts   []string       `json:"alerts,omitempty"`
}

// NewModel returns an idle Model.
func NewModel() *Model {
	return &Model{Status: session.Status{State: session.StateIdle}}
}

func (m *Model) SetInput(value string) {
	m.Input = value
}

func (m *Model) RenderLinks(links []string) {
	m.Links = links
	m.Rendered = true
}

func (m *Model) SetIndicator(status session.Status) {
	m.Status = status
	if status.State == session.StateIdle {
		m.Links = nil
		m.Rendered = false
	}
}

func (m *Model) Alert(message string) {
	m.Alerts = append(m.Alerts, message)
}

// Empty reports whether rendered results should show the placeholder.
func (m *Model) Empty() bool {
	return m.Rendered && len(m.Links) == 0
}

// StatusText is the status line for the current indicator.
func (m *Model) StatusText() string {
	return m.Status.Text()
}

var _ session.ViewSink = (*Model)(nil)
