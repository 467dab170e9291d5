package browser

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case rowsMsg:
		m.rows = msg.rows
		if msg.targetKey != "" {
			for i, r := range m.rows {
				if r.node.Key() == msg.targetKey {
					m.cursor = i
					break
				}
			}
		}
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.clampScroll()
		return m, nil

	case treeChangedMsg:
		// Re-arm the listener and rebuild from fresh engine state.
		return m, tea.Batch(buildRowsCmd(m.svc, m.expanded, ""), waitForChange(m.svc))

	case revealedMsg:
		return m.onRevealed(msg)

	case tea.KeyMsg:
		if m.revealing {
			return m.updateRevealInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampScroll()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.clampScroll()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.clampScroll()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.rows) - 1
		m.clampScroll()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		r := m.selected()
		if r == nil || !r.node.HasChildren {
			return m, nil
		}
		k := r.node.Key()
		m.expanded[k] = !m.expanded[k]
		return m, buildRowsCmd(m.svc, m.expanded, "")

	case key.Matches(msg, m.keys.Mode):
		settings := m.svc.Settings()
		if settings.DisplayMode == models.DisplayFlat {
			settings.DisplayMode = models.DisplayFullPaths
		} else {
			settings.DisplayMode = models.DisplayFlat
		}
		m.svc.UpdateSettings(settings)
		m.status = fmt.Sprintf("display mode: %s", settings.DisplayMode)
		// Expand-state keys are mode-specific; keep only the group headings.
		m.expanded = groupKeysOnly(m.svc, m.expanded)
		return m, buildRowsCmd(m.svc, m.expanded, "")

	case key.Matches(msg, m.keys.Reveal):
		m.revealing = true
		m.revealInput.SetValue("")
		return m, m.revealInput.Focus()
	}

	return m, nil
}

func (m Model) updateRevealInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.revealing = false
		m.revealInput.Blur()
		return m, nil
	case "enter":
		m.revealing = false
		m.revealInput.Blur()
		rel := m.revealInput.Value()
		if rel == "" {
			return m, nil
		}
		abs := filepath.Join(m.svc.WorkspaceRoot(), filepath.FromSlash(rel))
		return m, revealCmd(m.svc, abs)
	}

	var cmd tea.Cmd
	m.revealInput, cmd = m.revealInput.Update(msg)
	return m, cmd
}

func (m Model) onRevealed(msg revealedMsg) (tea.Model, tea.Cmd) {
	if msg.node == nil {
		m.status = fmt.Sprintf("no group owns %s", msg.path)
		return m, nil
	}

	// Open every ancestor so the node is visible, then park the cursor on
	// it once the rows rebuild.
	for n := msg.node; n != nil; n = m.svc.GetParent(n) {
		m.expanded[n.Key()] = true
	}
	m.status = fmt.Sprintf("revealed %s", msg.node.Label)
	return m, buildRowsCmd(m.svc, m.expanded, msg.node.Key())
}

func (m *Model) clampScroll() {
	visible := m.visibleRows()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func groupKeysOnly(svc *service.Service, old map[string]bool) map[string]bool {
	next := make(map[string]bool)
	for _, g := range svc.GetChildren(nil) {
		if old[g.Key()] {
			next[g.Key()] = true
		}
	}
	return next
}
