package result

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"taskchat/internal/store"
	"taskchat/internal/task"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	st, err := store.Open("sqlite3", filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	reminder := "2025-07-01T10:00"
	if _, err := st.Create(ctx, "ship release", &reminder); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	created, err := st.Create(ctx, "sweep backlog", nil)
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	done := true
	if _, err := st.Update(ctx, created.ID, task.Update{Completed: &done}); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	return NewExporter(st)
}

func TestExportJSON(t *testing.T) {
	e := newTestExporter(t)
	b, err := e.Export(context.Background(), "json")
	if err != nil {
		t.Fatalf("Export json: %v", err)
	}
	var tasks []task.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		t.Fatalf("output is not a task array: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Description != "ship release" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[0].Reminder == nil || *tasks[0].Reminder != "2025-07-01T10:00" {
		t.Fatalf("reminder lost: %+v", tasks[0])
	}
	if !tasks[1].Completed {
		t.Fatalf("completed flag lost: %+v", tasks[1])
	}
}

func TestExportCSV(t *testing.T) {
	e := newTestExporter(t)
	b, err := e.Export(context.Background(), "csv")
	if err != nil {
		t.Fatalf("Export csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(records))
	}
	header := strings.Join(records[0], ",")
	if header != "id,description,completed,reminder" {
		t.Fatalf("header = %q", header)
	}
	if records[1][1] != "ship release" || records[1][3] != "2025-07-01T10:00" {
		t.Fatalf("first row = %v", records[1])
	}
	if records[2][2] != "true" || records[2][3] != "" {
		t.Fatalf("second row = %v", records[2])
	}
}

func TestExportPDF(t *testing.T) {
	e := newTestExporter(t)
	b, err := e.Export(context.Background(), "pdf")
	if err != nil {
		t.Fatalf("Export pdf: %v", err)
	}
	if !strings.HasPrefix(string(b), "%PDF") {
		t.Fatal("output missing PDF header")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	e := newTestExporter(t)
	if _, err := e.Export(context.Background(), "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
