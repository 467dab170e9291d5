package browser

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

// row is a single visible line in the browser: a tree node plus its depth.
type row struct {
	node  *models.TreeNode
	depth int
}

// Model is the interactive group browser. It holds no subtree state of its
// own; every rebuild pulls children lazily from the service, and the only
// retained UI state is which node keys are expanded.
type Model struct {
	svc *service.Service

	rows     []*row
	expanded map[string]bool
	cursor   int
	scroll   int

	width  int
	height int

	keys        KeyMap
	help        help.Model
	revealInput textinput.Model
	revealing   bool
	status      string
}

// New creates the browser model.
func New(svc *service.Service) Model {
	input := textinput.New()
	input.Placeholder = "path to reveal (workspace-relative)"
	input.CharLimit = 512

	m := Model{
		svc:         svc,
		expanded:    make(map[string]bool),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		revealInput: input,
	}

	// Start with every group heading open so the tool is not a wall of
	// collapsed rows.
	for _, g := range svc.GetChildren(nil) {
		m.expanded[g.Key()] = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(buildRowsCmd(m.svc, m.expanded, ""), waitForChange(m.svc))
}

// selected returns the row under the cursor, or nil.
func (m Model) selected() *row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// visibleRows is how many tree lines fit between header and footer.
func (m Model) visibleRows() int {
	h := m.height - 4
	if h < 1 {
		return 1
	}
	return h
}
