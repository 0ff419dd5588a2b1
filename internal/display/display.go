// Package display renders a built sequence to a terminal: a tablewriter
// markdown table of the action rows plus a fatih/color status line,
// grounded on datalog/executor/table_formatter.go's TableFormatter and
// datalog/annotations/output.go's color-on-TTY-only convention.
package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mars-robotics/buildseq/internal/sequence"
)

// Printer renders build sequences to a writer, detecting color support the
// way OutputFormatter does (os.File + isatty, never forced).
type Printer struct {
	writer   io.Writer
	useColor bool
}

// NewPrinter builds a Printer writing to w. A nil w defaults to os.Stdout.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	return &Printer{writer: w, useColor: useColor}
}

// PrintPlan renders rows as a markdown table of #/uid/type/assets,
// followed by a summary line (spec §7: human-readable CLI rendering of a
// built sequence).
func (p *Printer) PrintPlan(kind string, rows []sequence.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(p.writer, p.colorize("no actions required — already at goal", color.FgYellow))
		return
	}

	tableString := &strings.Builder{}
	alignment := []tw.Align{tw.AlignNone, tw.AlignNone, tw.AlignNone, tw.AlignNone}
	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"#", "uid", "type", "assets"})

	for i, row := range rows {
		table.Append([]string{
			strconv.Itoa(i + 1),
			row.UID,
			row.Type,
			formatAssets(row.Assets),
		})
	}
	table.Render()

	fmt.Fprint(p.writer, tableString.String())
	fmt.Fprintln(p.writer, p.summary(kind, len(rows)))
}

func formatAssets(assets []sequence.AssetRow) string {
	if len(assets) == 0 {
		return "-"
	}
	parts := make([]string, len(assets))
	for i, a := range assets {
		parts[i] = a.UID
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) summary(kind string, count int) string {
	label := p.colorize(fmt.Sprintf("%d actions", count), color.FgMagenta)
	return fmt.Sprintf("%s built for %s", label, kind)
}

// PrintError renders a failure in red, mirroring OutputFormatter's "✗" style.
func (p *Printer) PrintError(kind string, err error) {
	fmt.Fprintln(p.writer, p.colorize(fmt.Sprintf("✗ %s failed: %v", kind, err), color.FgRed))
}

func (p *Printer) colorize(text string, attr color.Attribute) string {
	if !p.useColor {
		return text
	}
	return color.New(attr).Sprint(text)
}
