package result

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"taskchat/internal/store"

	"github.com/jung-kurt/gofpdf"
)

type Exporter struct{ st *store.Store }

func NewExporter(st *store.Store) *Exporter { return &Exporter{st: st} }

// Export renders the full task list in the requested format.
func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	tasks, err := e.st.List(ctx)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(tasks, "", "  ")
	case "csv":
		var b strings.Builder
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "description", "completed", "reminder"})
		for _, t := range tasks {
			reminder := ""
			if t.Reminder != nil {
				reminder = *t.Reminder
			}
			_ = w.Write([]string{fmt.Sprint(t.ID), t.Description, fmt.Sprint(t.Completed), reminder})
		}
		w.Flush()
		return []byte(b.String()), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Task List")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, t := range tasks {
			status := "open"
			if t.Completed {
				status = "done"
			}
			line := fmt.Sprintf("#%d [%s] %s", t.ID, status, t.Description)
			if t.Reminder != nil {
				line += fmt.Sprintf(" (reminder %s)", *t.Reminder)
			}
			pdf.MultiCell(0, 6, line, "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}
