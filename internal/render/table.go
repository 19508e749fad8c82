package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/example/wfviz/internal/domain"
	"github.com/example/wfviz/pkg/id"
)

// Column names understood by the table renderer.
const (
	ColumnName       = "name"
	ColumnKind       = "kind"
	ColumnStatus     = "status"
	ColumnPath       = "path"
	ColumnUUID       = "uuid"
	ColumnCreatedAt  = "createdAt"
	ColumnModifiedAt = "modifiedAt"
	ColumnScheduler  = "schedulerRequest"
)

const timeLayout = "2006-01-02 15:04:05"

var columnTitles = map[string]string{
	ColumnName:       "Name",
	ColumnKind:       "Kind",
	ColumnStatus:     "Status",
	ColumnPath:       "Path",
	ColumnUUID:       "UUID",
	ColumnCreatedAt:  "Creation Time",
	ColumnModifiedAt: "Modification Time",
	ColumnScheduler:  "Scheduler",
}

// Older names for the same columns.
var columnAliases = map[string]string{
	"ctime":     ColumnCreatedAt,
	"mtime":     ColumnModifiedAt,
	"scheduler": ColumnScheduler,
}

// DefaultColumns is the column set used when none is configured.
var DefaultColumns = []string{
	ColumnName,
	ColumnStatus,
	ColumnPath,
	ColumnUUID,
	ColumnCreatedAt,
	ColumnModifiedAt,
	ColumnScheduler,
}

// ParseColumns resolves aliases and rejects unknown column names.
func ParseColumns(names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		if _, ok := columnTitles[name]; !ok {
			return nil, fmt.Errorf("%w: unknown column %q", domain.ErrInvalidArgument, name)
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no columns selected", domain.ErrInvalidArgument)
	}
	return out, nil
}

// TableRenderer flattens a subtree into one row per node.
type TableRenderer struct {
	columns []string
	style   styler
}

// NewTableRenderer creates a table renderer for the given columns.
func NewTableRenderer(columns []string, palette Palette, useColor bool) (*TableRenderer, error) {
	cols, err := ParseColumns(columns)
	if err != nil {
		return nil, err
	}
	return &TableRenderer{
		columns: cols,
		style:   newStyler(palette, useColor),
	}, nil
}

// Header returns the column titles.
func (r *TableRenderer) Header() []string {
	header := make([]string, len(r.columns))
	for i, col := range r.columns {
		header[i] = columnTitles[col]
	}
	return header
}

// Rows walks the descendants of root in pre-order. The root itself is the
// table title, not a row.
func (r *TableRenderer) Rows(root *domain.Node) [][]string {
	var rows [][]string
	if root == nil {
		return rows
	}
	for _, child := range root.Children {
		child.Walk(func(n *domain.Node, _ int) bool {
			row := make([]string, len(r.columns))
			for i, col := range r.columns {
				row[i] = r.cell(n, col)
			}
			rows = append(rows, row)
			return true
		})
	}
	return rows
}

func (r *TableRenderer) cell(n *domain.Node, column string) string {
	switch column {
	case ColumnStatus:
		return r.style.status(n.Status, n.Status.String())
	case ColumnUUID:
		return id.Hex(n.ID)
	case ColumnCreatedAt:
		return n.CreatedAt.Format(timeLayout)
	case ColumnModifiedAt:
		return n.ModifiedAt.Format(timeLayout)
	case ColumnScheduler:
		if n.Scheduler == nil {
			return ""
		}
		return n.Scheduler.Summary()
	case ColumnName:
		return n.Name
	case ColumnKind:
		return n.Kind.String()
	case ColumnPath:
		return n.Path
	default:
		return ""
	}
}

// Render writes a titled table for the subtree to w.
func (r *TableRenderer) Render(w io.Writer, root *domain.Node) error {
	if root == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w, root.Name); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(r.Header())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetRowLine(true)
	table.AppendBulk(r.Rows(root))
	table.Render()
	return nil
}
