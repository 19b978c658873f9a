package ports

import (
	"context"

	"ordstat/domain/core"
	"ordstat/domain/record"
)

// RecordSource supplies the pre-extracted annotation records for a run. The
// extraction collaborator (parser/crawler) lives behind this boundary; the
// core never touches source syntax or the network.
type RecordSource interface {
	// Records returns the full ordered record collection for the batch.
	Records(ctx context.Context) ([]record.AnnotationRecord, error)
}

// DomainClassifier supplies the external repository-to-domain mapping.
// Repositories absent from the mapping are treated as unclassified.
type DomainClassifier interface {
	// Classify returns the repository id to domain label mapping.
	Classify(ctx context.Context) (map[core.RepositoryID]string, error)
}
