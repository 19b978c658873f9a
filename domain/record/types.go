package record

import (
	"strings"

	"ordstat/domain/core"
)

// DeclarationKind identifies the kind of type declaration an annotation list
// was attached to.
type DeclarationKind string

const (
	KindStruct DeclarationKind = "struct"
	KindEnum   DeclarationKind = "enum"
)

// AnnotationRecord is one parsed capability-annotation list.
// INVARIANTS:
// - Capabilities is non-empty and holds the literal textual order, never re-sorted
// - RepositoryID is non-empty
// - immutable once produced by New (the capability slice is copied in)
type AnnotationRecord struct {
	RepositoryID core.RepositoryID `json:"repository_id"`
	FilePath     string            `json:"file_path"`
	Kind         DeclarationKind   `json:"declaration_kind"`
	Capabilities []string          `json:"capability_names"`
	Line         int               `json:"line_number"`
}

// New validates and constructs an AnnotationRecord. The capability slice is
// copied so later mutation of the caller's slice cannot reorder the record.
func New(repo core.RepositoryID, filePath string, kind DeclarationKind, capabilities []string, line int) (AnnotationRecord, error) {
	r := AnnotationRecord{
		RepositoryID: repo,
		FilePath:     filePath,
		Kind:         kind,
		Capabilities: append([]string(nil), capabilities...),
		Line:         line,
	}
	if err := r.Validate(); err != nil {
		return AnnotationRecord{}, err
	}
	return r, nil
}

// Validate checks the record invariants. Violations are input defects: the
// caller skips the record with a diagnostic, never the whole batch.
func (r AnnotationRecord) Validate() error {
	if strings.TrimSpace(r.RepositoryID.String()) == "" {
		return core.ErrMissingRepository
	}
	if len(r.Capabilities) == 0 {
		return core.ErrEmptyCapabilities
	}
	for _, name := range r.Capabilities {
		if strings.TrimSpace(name) == "" {
			return core.ErrEmptyCapability
		}
	}
	if r.Kind != KindStruct && r.Kind != KindEnum {
		return core.ErrUnknownDeclaration
	}
	return nil
}

// Diagnostic records why a single record or repository was excluded from a run.
type Diagnostic struct {
	RepositoryID core.RepositoryID `json:"repository_id"`
	FilePath     string            `json:"file_path,omitempty"`
	Line         int               `json:"line_number,omitempty"`
	Reason       string            `json:"reason"`
}

// NewDiagnostic builds a diagnostic from a rejected record and its error.
func NewDiagnostic(r AnnotationRecord, err error) Diagnostic {
	return Diagnostic{
		RepositoryID: r.RepositoryID,
		FilePath:     r.FilePath,
		Line:         r.Line,
		Reason:       err.Error(),
	}
}
