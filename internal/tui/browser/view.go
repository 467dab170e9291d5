package browser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	titleCaser    = cases.Title(language.English)
)

func (m Model) View() string {
	if m.rows == nil {
		return "Loading..."
	}

	// Header
	wsName := titleCaser.String(filepath.Base(m.svc.WorkspaceRoot()))
	header := headerStyle.Render(fmt.Sprintf("%s File Groups", wsName))
	if branch := m.svc.BranchName(); branch != "" {
		header += mutedStyle.Render(fmt.Sprintf("  [%s]", branch))
	}
	header += mutedStyle.Render(fmt.Sprintf("  (%s)", m.svc.Settings().DisplayMode))

	var mid string
	if m.revealing {
		mid = m.revealInput.View()
	} else if m.status != "" {
		mid = mutedStyle.Render(m.status)
	}

	footer := m.help.View(m.keys)

	fullView := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.renderRows(),
		mid,
		footer,
	)

	return "\n" + fullView
}

func (m Model) renderRows() string {
	var b strings.Builder

	viewport := m.visibleRows()
	start := m.scroll
	end := m.scroll + viewport
	if end > len(m.rows) {
		end = len(m.rows)
	}

	branch := m.svc.BranchName()
	activeID := m.svc.ActiveGroupID()

	for i := start; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▶ ")
		}

		fold := "  "
		if r.node.HasChildren {
			if m.expanded[r.node.Key()] {
				fold = "▼ "
			} else {
				fold = "▶ "
			}
		}

		indent := strings.Repeat("  ", r.depth)
		label := r.node.Label
		if r.node.Kind == models.KindGroup {
			if g := m.svc.Registry().Get(r.node.GroupID); g != nil && g.BoundRef != "" && g.BoundRef != branch {
				label += mutedStyle.Render(" (off-branch)")
			}
			if r.node.GroupID == activeID {
				label = activeStyle.Render(label + " *")
			}
		} else if r.node.Kind == models.KindPathSegment && !r.node.IsTerminal {
			label = mutedStyle.Render(label)
		}

		line := fmt.Sprintf("%s%s%s%s", cursor, indent, fold, label)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.rows) > viewport {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.rows))))
		b.WriteString("\n")
	}

	return b.String()
}
