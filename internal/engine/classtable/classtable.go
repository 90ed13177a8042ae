// Package classtable holds the fixed disease taxonomy of the local
// classifier: an immutable index → label mapping loaded once at startup.
package classtable

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Table maps class indices to human-readable disease labels. It is never
// mutated after Load, so concurrent reads need no synchronization.
type Table struct {
	labels []string
}

// Load reads a class table from a JSON file of the form
// {"0": "Apple — Apple Scab", "1": ...}. Indices must be contiguous from 0.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classtable: read %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("classtable: parse %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("classtable: %s contains no classes", path)
	}

	labels := make([]string, len(raw))
	for key, label := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("classtable: non-numeric class index %q", key)
		}
		if idx < 0 || idx >= len(raw) {
			return nil, fmt.Errorf("classtable: class index %d out of range [0,%d)", idx, len(raw))
		}
		if labels[idx] != "" {
			return nil, fmt.Errorf("classtable: duplicate class index %d", idx)
		}
		if label == "" {
			return nil, fmt.Errorf("classtable: empty label for class index %d", idx)
		}
		labels[idx] = label
	}

	return &Table{labels: labels}, nil
}

// New builds a Table directly from an ordered label slice.
func New(labels []string) *Table {
	copied := make([]string, len(labels))
	copy(copied, labels)
	return &Table{labels: copied}
}

// Label returns the disease label for a class index. Indices outside the
// table are synthesized as "Unknown (<index>)" rather than failing.
func (t *Table) Label(index int) string {
	if index < 0 || index >= len(t.labels) {
		return fmt.Sprintf("Unknown (%d)", index)
	}
	return t.labels[index]
}

// Len returns the number of classes in the table.
func (t *Table) Len() int {
	return len(t.labels)
}
