package analyzer

import (
	"context"
	"errors"

	"placement-service/internal/models"
)

// ErrAdvisorUnavailable covers advisor timeouts, transport failures and
// malformed output. The caller falls back to the rule-based report.
var ErrAdvisorUnavailable = errors.New("advisory analyzer unavailable")

// Advisor is the optional post-test analyzer. Implementations must respect
// the context deadline; the engine never blocks end-of-test flow on them.
type Advisor interface {
	Analyze(ctx context.Context, history []models.AnsweredRecord) (*models.PlacementReport, error)
}
