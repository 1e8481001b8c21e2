package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"passtract/internal/providers"
)

// Processor runs one unit through the OCR capability, retrying transient
// failures per the policy. It never fails outward: every failure is
// captured into the UnitOutcome.
type Processor struct {
	extractor providers.Extractor
	policy    Policy
	tracker   *Tracker
	logger    *slog.Logger
}

// NewProcessor creates a unit processor.
func NewProcessor(extractor providers.Extractor, policy Policy, tracker *Tracker, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor: extractor,
		policy:    policy,
		tracker:   tracker,
		logger:    logger.With("component", "processor"),
	}
}

// Process runs the unit to completion and records its outcome.
func (p *Processor) Process(ctx context.Context, unit Unit) UnitOutcome {
	p.tracker.RecordStart(unit)

	var fields *providers.PassportFields
	attempts := 0

	err := retry.Do(
		func() error {
			attempts++
			f, err := p.extractor.Extract(ctx, unit.ImagePath)
			if err != nil {
				return err
			}
			fields = f
			return nil
		},
		retry.Context(ctx),
		// Unlimited from retry-go's side; the policy alone decides
		// eligibility, bounding total calls at MaxRetries+1.
		retry.Attempts(0),
		retry.RetryIf(func(err error) bool {
			return p.policy.ShouldRetry(attempts-1, providers.KindOf(err))
		}),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return p.policy.DelayFor(int(n))
		}),
		retry.OnRetry(func(n uint, err error) {
			p.tracker.RecordRetry(unit)
			p.logger.Warn("retrying unit",
				"unit", unit.Label(),
				"attempt", n+1,
				"kind", providers.KindOf(err),
				"error", err)
		}),
		retry.LastErrorOnly(true),
	)

	outcome := UnitOutcome{Unit: unit, Attempts: attempts}
	if err != nil {
		outcome.Err = err.Error()
		p.logger.Warn("unit failed", "unit", unit.Label(), "attempts", attempts, "error", err)
	} else {
		outcome.Fields = fields
		p.logger.Debug("unit succeeded", "unit", unit.Label(), "attempts", attempts)
	}

	p.tracker.RecordOutcome(outcome)
	return outcome
}
