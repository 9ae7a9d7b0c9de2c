package reconciliation

import (
	"context"
	"encoding/json"

	"github.com/brightcart/backend/internal/domain/reconciliation"
	"go.uber.org/zap"
)

// runRecorder persists the audit row for a finished reconciliation
// operation. The operation's outcome is already decided by the time the
// row is written, so persistence failures are logged and swallowed
// rather than failing the run.
type runRecorder struct {
	runRepo reconciliation.RunRepository
	logger  *zap.Logger
}

func (r *runRecorder) record(ctx context.Context, run *reconciliation.Run, total, succeeded, failed int, manifest any) {
	encoded, err := json.Marshal(manifest)
	if err != nil {
		r.logger.Error("Failed to encode run manifest", zap.Error(err))
		encoded = []byte("{}")
	}
	run.Finish(total, succeeded, failed, string(encoded))
	if err := r.runRepo.Create(ctx, run); err != nil {
		r.logger.Error("Failed to persist reconciliation run",
			zap.String("operation", run.Operation.String()), zap.Error(err))
	}
}

func encodeParameters(params any) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
