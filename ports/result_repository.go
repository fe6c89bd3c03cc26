package ports

import (
	"context"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// ResultRepository stores and retrieves per-question result documents.
// Documents are written once when a question completes and read back by the
// API, the report viewer and the offline batch pass.
type ResultRepository interface {
	Save(ctx context.Context, result *probe.QuestionResult) error
	Get(ctx context.Context, id core.QuestionID) (*probe.QuestionResult, error)
	List(ctx context.Context) ([]*probe.QuestionResult, error)
}
