package render

import (
	"io"
	"strings"

	"github.com/example/wfviz/internal/domain"
)

// TreeRenderer draws a subtree with box-drawing characters.
type TreeRenderer struct {
	style styler
}

// NewTreeRenderer creates a tree renderer. With useColor false the output
// carries no escape codes.
func NewTreeRenderer(palette Palette, useColor bool) *TreeRenderer {
	return &TreeRenderer{style: newStyler(palette, useColor)}
}

// Render writes the tree rooted at root to w.
func (r *TreeRenderer) Render(w io.Writer, root *domain.Node) error {
	_, err := io.WriteString(w, r.String(root))
	return err
}

// String renders the tree rooted at root.
func (r *TreeRenderer) String(root *domain.Node) string {
	if root == nil {
		return ""
	}
	var buf strings.Builder
	r.renderNode(&buf, root, "", true, 0)
	return buf.String()
}

// renderNode renders a node and then its children in insertion order.
// Tasks never expand.
func (r *TreeRenderer) renderNode(buf *strings.Builder, node *domain.Node, prefix string, isLast bool, depth int) {
	// Draw connection character (skip for root level)
	if depth > 0 {
		if isLast {
			buf.WriteString(prefix + "└── ")
		} else {
			buf.WriteString(prefix + "├── ")
		}
	}
	buf.WriteString(r.style.label(node))
	buf.WriteString("\n")

	if !node.IsWorkflow() {
		return
	}

	var childPrefix string
	if depth > 0 {
		if isLast {
			childPrefix = prefix + "    "
		} else {
			childPrefix = prefix + "│   "
		}
	}

	for i, child := range node.Children {
		r.renderNode(buf, child, childPrefix, i == len(node.Children)-1, depth+1)
	}
}
