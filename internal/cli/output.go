package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/dl-alexandre/gdxfer/internal/remote"
	"github.com/dl-alexandre/gdxfer/internal/types"
)

// OutputWriter prints user-facing results in the configured format.
// It implements files.Printer.
type OutputWriter struct {
	mu     sync.Mutex
	format types.OutputFormat
	out    io.Writer
}

// NewOutputWriter creates a new output writer
func NewOutputWriter(format types.OutputFormat, out io.Writer) *OutputWriter {
	return &OutputWriter{
		format: format,
		out:    out,
	}
}

func (w *OutputWriter) Printf(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// Listing prints entries as "Title/id" lines, or as a table in table mode
func (w *OutputWriter) Listing(entries []*remote.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.format == types.OutputFormatTable {
		w.renderTable(entryTable(entries))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w.out, "Title: %s\tid: %s\n", e.Title, e.ID)
	}
}

func (w *OutputWriter) renderTable(renderer types.TableRenderer) {
	rows := renderer.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w.out, renderer.EmptyMessage())
		return
	}

	table := tablewriter.NewWriter(w.out)
	table.SetHeader(renderer.Headers())
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range rows {
		table.Append(row)
	}

	table.Render()
}

type entryTable []*remote.Entry

func (t entryTable) Headers() []string {
	return []string{"Title", "ID"}
}

func (t entryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{e.Title, e.ID})
	}
	return rows
}

func (t entryTable) EmptyMessage() string {
	return "No files found"
}
