package moderation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"microhub/internal/apperr"
	"microhub/internal/metrics"
	"microhub/pkg/logger"
)

// Checker is the part of the engine client the gate needs.
type Checker interface {
	Check(ctx context.Context, content, contentType string) (Verdict, error)
}

// Outcome classifies one pass through the gate.
type Outcome int

const (
	// OutcomeApproved: the engine approved the content.
	OutcomeApproved Outcome = iota
	// OutcomeSkipped: no engine is configured.
	OutcomeSkipped
	// OutcomeInconclusive: the engine could not be reached; the write proceeds.
	OutcomeInconclusive
	// OutcomeRejected: the engine flagged the content; the write is refused.
	OutcomeRejected
	// OutcomeFailed: the engine answered with an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeInconclusive:
		return "inconclusive"
	case OutcomeRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Decision is the gate's result for one submission.
type Decision struct {
	Outcome Outcome
	Verdict Verdict
	Err     error
}

// Allowed reports whether the write may proceed.
func (d Decision) Allowed() bool {
	switch d.Outcome {
	case OutcomeApproved, OutcomeSkipped, OutcomeInconclusive:
		return true
	default:
		return false
	}
}

// Gate sits in front of post and comment creation. It fails open when the engine is
// missing or unreachable and fails closed on a negative verdict.
type Gate struct {
	checker Checker
	rec     metrics.Recorder
}

// NewGate builds a gate. A nil checker means moderation is not configured.
func NewGate(checker Checker, rec metrics.Recorder) *Gate {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Gate{checker: checker, rec: rec}
}

// Evaluate runs content through the engine and classifies the result.
func (g *Gate) Evaluate(ctx context.Context, content, contentType string) Decision {
	d := g.evaluate(ctx, content, contentType)
	g.rec.RecordModeration(d.Outcome.String())
	return d
}

func (g *Gate) evaluate(ctx context.Context, content, contentType string) Decision {
	log := logger.From(ctx)

	if g.checker == nil {
		log.Warn("moderation engine not configured, skipping moderation", "content_type", contentType)
		return Decision{Outcome: OutcomeSkipped}
	}

	v, err := g.checker.Check(ctx, content, contentType)
	if err != nil {
		if isUnreachable(err) {
			log.Warn("moderation engine unavailable, allowing content", "content_type", contentType, "err", err)
			return Decision{Outcome: OutcomeInconclusive, Err: err}
		}
		return Decision{Outcome: OutcomeFailed, Err: err}
	}
	if !v.Approved {
		return Decision{Outcome: OutcomeRejected, Verdict: v}
	}
	return Decision{Outcome: OutcomeApproved, Verdict: v}
}

// Moderate returns nil when the write may proceed, apperr.ModerationRejected on a
// negative verdict and apperr.Upstream when the engine answered with an error.
func (g *Gate) Moderate(ctx context.Context, content, contentType string) error {
	d := g.Evaluate(ctx, content, contentType)
	switch d.Outcome {
	case OutcomeRejected:
		return apperr.ModerationRejected(
			fmt.Sprintf("Your %s contains inappropriate content and cannot be published.", contentType),
			d.Verdict.FlaggedCategories,
		)
	case OutcomeFailed:
		return apperr.Upstream("Moderation failed", d.Err)
	default:
		return nil
	}
}

// isUnreachable matches refused connections and timeouts, the failures that say
// nothing about the content itself.
func isUnreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	return errors.As(err, &oe) && oe.Op == "dial"
}
