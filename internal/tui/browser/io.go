package browser

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-filegroups/pkg/models"
	"github.com/mattsolo1/grove-filegroups/pkg/service"
)

type rowsMsg struct {
	rows []*row
	// targetKey, when set, asks the UI to move the cursor to that node
	// after the rows land.
	targetKey string
}

type treeChangedMsg struct{}

type revealedMsg struct {
	node    *models.TreeNode
	groupID string
	path    string
}

// buildRowsCmd flattens the expanded tree into visible rows. The expanded
// map is copied up front so the command is safe against later UI mutation.
func buildRowsCmd(svc *service.Service, expanded map[string]bool, targetKey string) tea.Cmd {
	open := make(map[string]bool, len(expanded))
	for k, v := range expanded {
		open[k] = v
	}

	return func() tea.Msg {
		var rows []*row
		var walk func(node *models.TreeNode, depth int)
		walk = func(node *models.TreeNode, depth int) {
			rows = append(rows, &row{node: node, depth: depth})
			if !node.HasChildren || !open[node.Key()] {
				return
			}
			for _, child := range svc.GetChildren(node) {
				walk(child, depth+1)
			}
		}

		for _, g := range svc.GetChildren(nil) {
			walk(g, 0)
		}
		return rowsMsg{rows: rows, targetKey: targetKey}
	}
}

// waitForChange blocks until the engine signals that the tree must be
// rebuilt, then re-arms itself from Update.
func waitForChange(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		<-svc.OnChanged()
		return treeChangedMsg{}
	}
}

// revealCmd runs the reveal walk off the UI loop.
func revealCmd(svc *service.Service, path string) tea.Cmd {
	return func() tea.Msg {
		node, groupID := svc.Reveal(path)
		return revealedMsg{node: node, groupID: groupID, path: path}
	}
}
