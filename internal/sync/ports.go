package sync

import (
	"context"

	"jeevan/internal/domain"
)

// Batch is everything one upload attempt carries: the pending evidence
// records and the queued submissions. One call per cycle, not per record;
// round trips are the scarce resource in the target deployment.
type Batch struct {
	Records     []domain.SecureRecord `json:"records"`
	Submissions []domain.Submission   `json:"submissions"`
}

// Uploader is the remote delivery port. The remote endpoint must be
// idempotent by reference id: at-least-once delivery is this design's
// accepted tradeoff, so a re-uploaded batch after a crash must be harmless.
type Uploader interface {
	UploadBatch(ctx context.Context, batch Batch) error
}
