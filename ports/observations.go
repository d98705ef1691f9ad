package ports

import (
	"context"

	"carevisits/domain/survey"
)

// ObservationSource loads the tidy survey table from wherever it lives
// (file export, database, request payload). Ingestion and cleaning of the
// raw survey are upstream concerns; sources return rows already in the
// tidy schema.
type ObservationSource interface {
	LoadObservations(ctx context.Context) (survey.Table, error)
}

// ObservationStore persists observations for service deployments.
// This is the ONLY way to write survey rows - analysis never mutates them.
type ObservationStore interface {
	ObservationSource
	SaveObservations(ctx context.Context, rows survey.Table) error
}
