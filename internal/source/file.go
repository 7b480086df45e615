package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guimove/binfit/internal/model"
)

// FileSource loads tasks from a JSON, YAML, or CSV file.
// Used for offline packing, testing, and CI pipelines.
type FileSource struct {
	path   string
	format string
	data   []byte
}

// NewFileSource creates a source reading path. An empty format is inferred
// from the file extension.
func NewFileSource(path, format string) *FileSource {
	return &FileSource{path: path, format: format}
}

// NewReaderSource creates a source from already-read content, such as stdin.
func NewReaderSource(r io.Reader, format string) (*FileSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tasks: %w", err)
	}
	return &FileSource{path: "-", format: format, data: data}, nil
}

// Name returns "file".
func (s *FileSource) Name() string { return "file" }

// Ping checks that the file exists.
func (s *FileSource) Ping(ctx context.Context) error {
	if s.data != nil {
		return nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("task file: %w", err)
	}
	return nil
}

// fileTask mirrors model.Task with an optional weight so that missing
// weights can be told apart from zero.
type fileTask struct {
	Name      string            `json:"name" yaml:"name"`
	Namespace string            `json:"namespace" yaml:"namespace"`
	Weight    *uint64           `json:"weight" yaml:"weight"`
	Labels    map[string]string `json:"labels" yaml:"labels"`
}

type fileDoc struct {
	Tasks []fileTask `json:"tasks" yaml:"tasks"`
}

// Load parses the file into a workset.
func (s *FileSource) Load(ctx context.Context) (*model.Workset, error) {
	data := s.data
	if data == nil {
		var err error
		data, err = os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("reading task file: %w", err)
		}
	}

	format := s.format
	if format == "" {
		format = formatFromExt(s.path)
	}

	var (
		tasks []model.Task
		err   error
	)
	switch format {
	case "json":
		tasks, err = parseJSON(data)
	case "yaml", "yml":
		tasks, err = parseYAML(data)
	case "csv":
		tasks, err = parseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported task file format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", s.path, err)
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	for i := range tasks {
		tasks[i].Source = s.Name()
	}
	return &model.Workset{
		CollectedAt: time.Now(),
		Source:      s.Name(),
		Tasks:       tasks,
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".csv":
		return "csv"
	default:
		return "json"
	}
}

// parseJSON accepts either a bare list of tasks or a {"tasks": [...]} document.
func parseJSON(data []byte) ([]model.Task, error) {
	trimmed := bytes.TrimSpace(data)
	var raw []fileTask
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, err
		}
	} else {
		var doc fileDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		raw = doc.Tasks
	}
	return convertTasks(raw)
}

// parseYAML accepts the same two shapes as parseJSON, told apart by the
// kind of the document's root node.
func parseYAML(data []byte) ([]model.Task, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}

	var raw []fileTask
	switch node := root.Content[0]; node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var doc fileDoc
		if err := node.Decode(&doc); err != nil {
			return nil, err
		}
		raw = doc.Tasks
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("line %d: expected a list of tasks or a tasks mapping", node.Line)
	default:
		return nil, fmt.Errorf("line %d: expected a list of tasks or a tasks mapping", node.Line)
	}
	return convertTasks(raw)
}

func convertTasks(raw []fileTask) ([]model.Task, error) {
	tasks := make([]model.Task, len(raw))
	for i, ft := range raw {
		if ft.Weight == nil {
			return nil, fmt.Errorf("%w: task %d (%q) has no weight", ErrInvalidWeight, i, ft.Name)
		}
		tasks[i] = model.Task{
			Name:      taskName(ft.Name, i),
			Namespace: ft.Namespace,
			Weight:    *ft.Weight,
			Labels:    ft.Labels,
		}
	}
	return tasks, nil
}

// parseCSV reads name,weight[,namespace] rows. A first row starting with
// "name" is treated as a header.
func parseCSV(data []byte) ([]model.Task, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 && strings.EqualFold(records[0][0], "name") {
		records = records[1:]
	}

	tasks := make([]model.Task, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: row %d needs name and weight", ErrInvalidWeight, i+1)
		}
		w, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidWeight, i+1, err)
		}
		t := model.Task{Name: taskName(rec[0], i), Weight: w}
		if len(rec) > 2 {
			t.Namespace = rec[2]
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func taskName(name string, idx int) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fmt.Sprintf("task-%d", idx)
}
