package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ordstat/domain/core"
	"ordstat/domain/record"
	"ordstat/ports"
)

var (
	_ ports.RecordSource     = (*JSONRecordSource)(nil)
	_ ports.RecordSource     = (*CSVRecordSource)(nil)
	_ ports.DomainClassifier = (*JSONDomainClassifier)(nil)
)

// JSONRecordSource reads annotation records from a JSON array file, the
// primary interchange format of the extraction pipeline.
type JSONRecordSource struct {
	path string
}

// NewJSONRecordSource creates a source for the given file path.
func NewJSONRecordSource(path string) *JSONRecordSource {
	return &JSONRecordSource{path: path}
}

// Records decodes the full record collection. Decoding is strict about shape
// but not about content: records with empty fields are returned as-is so the
// analysis service can reject them with per-record diagnostics.
func (s *JSONRecordSource) Records(_ context.Context) ([]record.AnnotationRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	var records []record.AnnotationRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records file %s: %w", s.path, err)
	}
	return records, nil
}

// CSVRecordSource reads annotation records from the CSV export format:
// repository_id, file_path, declaration_kind, line_number, capability_names
// with capability names comma-joined inside the last column.
type CSVRecordSource struct {
	path string
}

// NewCSVRecordSource creates a source for the given file path.
func NewCSVRecordSource(path string) *CSVRecordSource {
	return &CSVRecordSource{path: path}
}

// Records parses the CSV rows. Rows with a malformed line number are returned
// with line zero rather than dropped; content validation is downstream.
func (s *CSVRecordSource) Records(_ context.Context) ([]record.AnnotationRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	// Header row.
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records []record.AnnotationRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		line, _ := strconv.Atoi(strings.TrimSpace(row[3]))
		records = append(records, record.AnnotationRecord{
			RepositoryID: core.RepositoryID(strings.TrimSpace(row[0])),
			FilePath:     strings.TrimSpace(row[1]),
			Kind:         record.DeclarationKind(strings.TrimSpace(row[2])),
			Capabilities: splitCapabilities(row[4]),
			Line:         line,
		})
	}
	return records, nil
}

func splitCapabilities(field string) []string {
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// JSONDomainClassifier reads the external repository-to-domain mapping from a
// JSON object file ({"repo": "domain", ...}).
type JSONDomainClassifier struct {
	path string
}

// NewJSONDomainClassifier creates a classifier for the given file path. An
// empty path yields an empty mapping: every repository becomes unclassified.
func NewJSONDomainClassifier(path string) *JSONDomainClassifier {
	return &JSONDomainClassifier{path: path}
}

// Classify returns the mapping.
func (c *JSONDomainClassifier) Classify(_ context.Context) (map[core.RepositoryID]string, error) {
	if c.path == "" {
		return map[core.RepositoryID]string{}, nil
	}
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open domains file: %w", err)
	}
	defer f.Close()

	var raw map[string]string
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode domains file %s: %w", c.path, err)
	}
	out := make(map[core.RepositoryID]string, len(raw))
	for repo, label := range raw {
		out[core.RepositoryID(repo)] = label
	}
	return out, nil
}
