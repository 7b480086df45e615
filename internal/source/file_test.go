package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFileSourceJSONList(t *testing.T) {
	path := writeFile(t, "tasks.json", `[
  {"name": "a", "weight": 3},
  {"name": "b", "namespace": "prod", "weight": 5, "labels": {"tier": "web"}}
]`)

	ws, err := NewFileSource(path, "").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.TaskCount() != 2 {
		t.Fatalf("expected 2 tasks, got %d", ws.TaskCount())
	}
	if ws.Tasks[1].Key() != "prod/b" || ws.Tasks[1].Weight != 5 {
		t.Errorf("unexpected task %+v", ws.Tasks[1])
	}
	if ws.Tasks[1].Labels["tier"] != "web" {
		t.Errorf("labels not parsed: %v", ws.Tasks[1].Labels)
	}
	if ws.Source != "file" || ws.Tasks[0].Source != "file" {
		t.Errorf("source not set: %q / %q", ws.Source, ws.Tasks[0].Source)
	}
}

func TestFileSourceJSONDocument(t *testing.T) {
	path := writeFile(t, "tasks.json", `{"tasks": [{"name": "x", "weight": 0}]}`)

	ws, err := NewFileSource(path, "").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.TaskCount() != 1 || ws.Tasks[0].Weight != 0 {
		t.Errorf("unexpected tasks %+v", ws.Tasks)
	}
}

func TestFileSourceYAML(t *testing.T) {
	path := writeFile(t, "tasks.yml", `tasks:
  - name: db
    weight: 4
  - name: cache
    weight: 2
`)

	ws, err := NewFileSource(path, "").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.TotalWeight() != 6 {
		t.Errorf("expected total weight 6, got %d", ws.TotalWeight())
	}
}

func TestFileSourceYAMLList(t *testing.T) {
	path := writeFile(t, "tasks.yaml", "- name: one\n  weight: 1\n- name: two\n  weight: 2\n")

	ws, err := NewFileSource(path, "").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.TaskCount() != 2 {
		t.Errorf("expected 2 tasks, got %d", ws.TaskCount())
	}
}

func TestFileSourceYAMLListShapes(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"leading comment", "# tasks\n- name: a\n  weight: 1\n- name: b\n  weight: 2\n"},
		{"document marker", "---\n- name: a\n  weight: 1\n- name: b\n  weight: 2\n"},
		{"item on next line", "-\n  name: a\n  weight: 1\n-\n  name: b\n  weight: 2\n"},
		{"flow list", "[{name: a, weight: 1}, {name: b, weight: 2}]\n"},
		{"commented document", "# generated\n---\ntasks:\n  - name: a\n    weight: 1\n  - name: b\n    weight: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "tasks.yaml", tt.content)
			ws, err := NewFileSource(path, "").Load(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ws.TaskCount() != 2 || ws.Tasks[0].Name != "a" || ws.TotalWeight() != 3 {
				t.Errorf("unexpected tasks %+v", ws.Tasks)
			}
		})
	}
}

func TestFileSourceYAMLEmptyAndScalar(t *testing.T) {
	for _, content := range []string{"", "# nothing yet\n", "---\n"} {
		path := writeFile(t, "tasks.yaml", content)
		if _, err := NewFileSource(path, "").Load(context.Background()); !errors.Is(err, ErrNoTasks) {
			t.Errorf("content %q: expected ErrNoTasks, got %v", content, err)
		}
	}

	path := writeFile(t, "tasks.yaml", "just a string\n")
	if _, err := NewFileSource(path, "").Load(context.Background()); err == nil {
		t.Error("expected an error for a scalar document")
	}
}

func TestFileSourceCSV(t *testing.T) {
	path := writeFile(t, "tasks.csv", "name,weight,namespace\napi,7,prod\n,2\n")

	ws, err := NewFileSource(path, "").Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.TaskCount() != 2 {
		t.Fatalf("expected 2 tasks, got %d", ws.TaskCount())
	}
	if ws.Tasks[0].Key() != "prod/api" || ws.Tasks[0].Weight != 7 {
		t.Errorf("unexpected first task %+v", ws.Tasks[0])
	}
	if ws.Tasks[1].Name != "task-1" {
		t.Errorf("expected generated name task-1, got %q", ws.Tasks[1].Name)
	}
}

func TestFileSourceRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"json negative", "t.json", `[{"name": "a", "weight": -1}]`},
		{"json missing", "t.json", `[{"name": "a"}]`},
		{"yaml missing", "t.yaml", "- name: a\n"},
		{"csv negative", "t.csv", "a,-3\n"},
		{"csv not a number", "t.csv", "a,lots\n"},
		{"csv short row", "t.csv", "a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if _, err := NewFileSource(path, "").Load(context.Background()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFileSourceMissingWeightIsInvalidWeight(t *testing.T) {
	path := writeFile(t, "t.json", `[{"name": "a"}]`)
	_, err := NewFileSource(path, "").Load(context.Background())
	if !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
}

func TestFileSourceEmpty(t *testing.T) {
	path := writeFile(t, "t.json", `[]`)
	_, err := NewFileSource(path, "").Load(context.Background())
	if !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}

func TestFileSourceUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "t.json", `[]`)
	_, err := NewFileSource(path, "toml").Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestFileSourcePing(t *testing.T) {
	if err := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), "").Ping(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
	path := writeFile(t, "t.json", `[]`)
	if err := NewFileSource(path, "").Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReaderSource(t *testing.T) {
	src, err := NewReaderSource(strings.NewReader("a,1\nb,2\n"), "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ws, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.TotalWeight() != 3 {
		t.Errorf("expected total 3, got %d", ws.TotalWeight())
	}
}
