package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/cosmosql/internal/cli/output"
	"github.com/leapstack-labs/cosmosql/pkg/ast"
)

// TreeNode is the machine-readable form of a syntax tree node. Leaves carry
// their canonical text.
type TreeNode struct {
	Type     string      `json:"type" yaml:"type"`
	Start    uint64      `json:"start" yaml:"start"`
	End      uint64      `json:"end" yaml:"end"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func buildTree(n ast.Node) *TreeNode {
	span := n.GetSpan()
	t := &TreeNode{
		Type:  nodeType(n),
		Start: span.Start,
		End:   span.End,
	}
	kids := ast.Children(n)
	if len(kids) == 0 {
		t.Text = ast.String(n)
	}
	for _, c := range kids {
		t.Children = append(t.Children, buildTree(c))
	}
	return t
}

func nodeType(n ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*ast.")
}

// renderTreeTable lists the nodes of root depth first, indented by depth.
func renderTreeTable(r *output.Renderer, root *TreeNode) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Node", "Span", "Text"})

	var add func(n *TreeNode, depth int)
	add = func(n *TreeNode, depth int) {
		t.AppendRow(table.Row{
			strings.Repeat("  ", depth) + n.Type,
			fmt.Sprintf("%d:%d", n.Start, n.End),
			n.Text,
		})
		for _, c := range n.Children {
			add(c, depth+1)
		}
	}
	add(root, 0)
	t.Render()
}
