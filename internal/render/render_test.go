package render

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wfviz/internal/domain"
)

func mainWorkflow() *domain.Node {
	wf := domain.NewWorkflow("main", domain.StatusRunning)
	wf.Path = "/work/main"
	for _, model := range []string{"model A", "model B"} {
		child := domain.NewWorkflow(model, domain.StatusPending)
		for _, step := range []string{"step 1", "step 2", "step 3"} {
			child.Add(domain.NewTask(step, domain.StatusCompleted))
		}
		wf.Add(child)
	}
	domain.FixPaths(wf)
	return wf
}

func TestTreePlain(t *testing.T) {
	r := NewTreeRenderer(DefaultPalette(), false)

	want := strings.Join([]string{
		"main",
		"├── model A",
		"│   ├── step 1",
		"│   ├── step 2",
		"│   └── step 3",
		"└── model B",
		"    ├── step 1",
		"    ├── step 2",
		"    └── step 3",
		"",
	}, "\n")
	assert.Equal(t, want, r.String(mainWorkflow()))
}

func TestTreeIsRestartable(t *testing.T) {
	r := NewTreeRenderer(DefaultPalette(), true)
	wf := mainWorkflow()
	assert.Equal(t, r.String(wf), r.String(wf))
}

func TestTreeSubtree(t *testing.T) {
	r := NewTreeRenderer(DefaultPalette(), false)
	got := r.String(mainWorkflow().Children[1])
	assert.Equal(t, "model B\n├── step 1\n├── step 2\n└── step 3\n", got)
}

func TestTreeNestedPrefixes(t *testing.T) {
	root := domain.NewWorkflow("root", domain.StatusRunning)
	a := domain.NewWorkflow("a", domain.StatusRunning)
	inner := domain.NewWorkflow("inner", domain.StatusRunning, domain.NewTask("deep", domain.StatusFailed))
	a.Add(inner, domain.NewTask("a2", domain.StatusPending))
	root.Add(a, domain.NewTask("b", domain.StatusPending))

	want := strings.Join([]string{
		"root",
		"├── a",
		"│   ├── inner",
		"│   │   └── deep",
		"│   └── a2",
		"└── b",
		"",
	}, "\n")
	assert.Equal(t, want, NewTreeRenderer(DefaultPalette(), false).String(root))
}

func TestTreeEmptyWorkflowAndNil(t *testing.T) {
	r := NewTreeRenderer(DefaultPalette(), false)
	assert.Equal(t, "lonely\n", r.String(domain.NewWorkflow("lonely", domain.StatusPending)))
	assert.Equal(t, "", r.String(nil))
}

func TestTreeColoursEachStatusDistinctly(t *testing.T) {
	root := domain.NewWorkflow("root", domain.StatusRunning)
	for _, s := range domain.Statuses {
		root.Add(domain.NewTask(s.String(), s))
	}

	colored := NewTreeRenderer(DefaultPalette(), true).String(root)
	plain := NewTreeRenderer(DefaultPalette(), false).String(root)
	assert.Equal(t, plain, color.ClearCode(colored))

	codes := regexp.MustCompile("\x1b\\[([0-9;]+)m[a-z]+\x1b\\[0m").FindAllStringSubmatch(colored, -1)
	require.Len(t, codes, len(domain.Statuses)+1)
	seen := make(map[string]bool)
	for _, c := range codes[1:] {
		seen[c[1]] = true
	}
	assert.Len(t, seen, len(domain.Statuses))
}

func TestTreeUsesInjectedPalette(t *testing.T) {
	palette := DefaultPalette()
	palette.Statuses[domain.StatusCompleted] = "bold cyan"

	out := NewTreeRenderer(palette, true).String(domain.NewTask("done", domain.StatusCompleted))
	assert.Equal(t, "\x1b[1;36mdone\x1b[0m\n", out)
}

func TestTreeParallelStyle(t *testing.T) {
	wf := domain.NewWorkflow("fan out", domain.StatusRunning)
	wf.Parallel = true

	out := NewTreeRenderer(DefaultPalette(), true).String(wf)
	assert.Equal(t, "\x1b[34;3mfan out\x1b[0m\n", out)

	wf.Parallel = false
	out = NewTreeRenderer(DefaultPalette(), true).String(wf)
	assert.Equal(t, "\x1b[34mfan out\x1b[0m\n", out)
}

func TestStylerRendersLikeGookit(t *testing.T) {
	s := newStyler(DefaultPalette(), true)
	assert.True(t, color.SupportColor())

	got := s.apply("fan out", "blue", "italic")
	assert.Equal(t, color.New(color.FgBlue, color.OpItalic).Sprint("fan out"), got)
	assert.Equal(t, "fan out", color.ClearCode(got))

	assert.Equal(t, "plain", s.apply("plain", "standard"))
	assert.Equal(t, "plain", newStyler(DefaultPalette(), false).apply("plain", "red"))
}

func TestTreeDeep(t *testing.T) {
	root := domain.NewWorkflow("level", domain.StatusPending)
	cur := root
	for i := 0; i < 300; i++ {
		next := domain.NewWorkflow("level", domain.StatusPending)
		cur.Add(next)
		cur = next
	}
	out := NewTreeRenderer(DefaultPalette(), false).String(root)
	assert.Equal(t, 301, strings.Count(out, "\n"))
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns([]string{"name", " ctime", "mtime", "scheduler", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{ColumnName, ColumnCreatedAt, ColumnModifiedAt, ColumnScheduler}, cols)

	_, err = ParseColumns([]string{"name", "colour"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = ParseColumns(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTableRowsPreOrder(t *testing.T) {
	r, err := NewTableRenderer([]string{ColumnName, ColumnPath}, DefaultPalette(), false)
	require.NoError(t, err)

	rows := r.Rows(mainWorkflow())
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"model A", "/work/main/model_a"}, rows[0])
	assert.Equal(t, []string{"step 3", "/work/main/model_a/step_3"}, rows[3])
	assert.Equal(t, []string{"model B", "/work/main/model_b"}, rows[4])
	assert.Equal(t, []string{"step 3", "/work/main/model_b/step_3"}, rows[7])
}

func TestTableRowsSkipRoot(t *testing.T) {
	r, err := NewTableRenderer([]string{ColumnName}, DefaultPalette(), false)
	require.NoError(t, err)

	assert.Empty(t, r.Rows(domain.NewTask("alone", domain.StatusPending)))
	assert.Empty(t, r.Rows(domain.NewWorkflow("empty", domain.StatusPending)))
	for _, row := range r.Rows(mainWorkflow()) {
		assert.NotEqual(t, "main", row[0])
	}
}

func TestTableUUIDColumn(t *testing.T) {
	r, err := NewTableRenderer([]string{ColumnUUID}, DefaultPalette(), false)
	require.NoError(t, err)

	hex := regexp.MustCompile(`^[0-9a-f]{32}$`)
	for _, row := range r.Rows(mainWorkflow()) {
		assert.Regexp(t, hex, row[0])
	}
}

func TestTableCellFormats(t *testing.T) {
	task := domain.NewTask("solve", domain.StatusFailed)
	task.CreatedAt = time.Date(2024, 3, 5, 7, 8, 9, 123, time.UTC)
	task.ModifiedAt = time.Date(2024, 3, 6, 17, 0, 1, 0, time.UTC)

	r, err := NewTableRenderer(
		[]string{ColumnStatus, ColumnCreatedAt, ColumnModifiedAt, ColumnScheduler, ColumnKind},
		DefaultPalette(), false)
	require.NoError(t, err)

	wf := domain.NewWorkflow("wf", domain.StatusRunning, task)
	rows := r.Rows(wf)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"failed", "2024-03-05 07:08:09", "2024-03-06 17:00:01", "", "task"}, rows[0])

	task.Scheduler = &domain.SchedulerRequest{Kind: "pbs", Partition: "short", NodeCount: 2, ProcsPerNode: 8, WallclockRequested: time.Hour}
	rows = r.Rows(wf)
	assert.Equal(t, task.Scheduler.Summary(), rows[0][3])
	assert.Contains(t, rows[0][3], "\n")
}

func TestTableStatusStyled(t *testing.T) {
	r, err := NewTableRenderer([]string{ColumnStatus}, DefaultPalette(), true)
	require.NoError(t, err)

	rows := r.Rows(domain.NewWorkflow("wf", domain.StatusRunning, domain.NewTask("x", domain.StatusCompleted)))
	require.Len(t, rows, 1)
	assert.Equal(t, "\x1b[32mcompleted\x1b[0m", rows[0][0])
}

func TestTableRender(t *testing.T) {
	r, err := NewTableRenderer(DefaultColumns, DefaultPalette(), false)
	require.NoError(t, err)

	wf := mainWorkflow()
	wf.Children[0].Scheduler = &domain.SchedulerRequest{Kind: "slurm", Partition: "gpu", NodeCount: 1, ProcsPerNode: 4, WallclockRequested: time.Hour}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, wf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "main\n"))
	assert.NotContains(t, out, "| main ")
	assert.Contains(t, out, "Creation Time")
	assert.Contains(t, out, "Scheduler: slurm")
	assert.Contains(t, out, "Partition: gpu")
	assert.Less(t, strings.Index(out, "model A"), strings.Index(out, "model B"))
}

func TestLegend(t *testing.T) {
	rows := LegendRows(DefaultPalette(), false)
	require.Len(t, rows, 1+len(domain.Statuses)+3)
	assert.Equal(t, []string{"grey", "unstarted"}, rows[1])
	assert.Equal(t, []string{"red", "failed"}, rows[5])
	assert.Equal(t, []string{"italic", "Parallel"}, rows[7])
	assert.Equal(t, []string{"standard", "Serial"}, rows[8])

	var buf bytes.Buffer
	require.NoError(t, RenderLegend(&buf, DefaultPalette(), false))
	assert.Contains(t, buf.String(), "Legend")
	assert.Contains(t, buf.String(), "completed")
}

func TestPaletteValidate(t *testing.T) {
	assert.NoError(t, DefaultPalette().Validate())

	p := DefaultPalette()
	p.Statuses[domain.StatusRunning] = "sparkly"
	assert.ErrorIs(t, p.Validate(), domain.ErrInvalidArgument)

	p = DefaultPalette()
	delete(p.Statuses, domain.StatusFailed)
	assert.ErrorIs(t, p.Validate(), domain.ErrInvalidArgument)
}
