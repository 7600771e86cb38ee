package outbox

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ProcessorConfig tunes a Processor
type ProcessorConfig struct {
	BatchSize   int // Actions replayed per run, zero means all
	MaxAttempts int // Attempts before a temporary failure becomes permanent
}

// Stats summarizes one processing run
type Stats struct {
	Done    int
	Retried int
	Failed  int
}

// Processor replays pending actions from a Queue
type Processor struct {
	queue     *Queue
	performer Performer
	config    ProcessorConfig
	logger    zerolog.Logger
}

// NewProcessor creates a Processor. MaxAttempts defaults to 5.
func NewProcessor(queue *Queue, performer Performer, cfg ProcessorConfig, logger zerolog.Logger) *Processor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Processor{
		queue:     queue,
		performer: performer,
		config:    cfg,
		logger:    logger.With().Str("component", "outbox").Logger(),
	}
}

// temporary matches errors that may succeed on a later attempt
type temporary interface {
	Temporary() bool
}

// ProcessPending replays one batch of pending actions. Temporary failures
// stay pending until MaxAttempts is reached; any other failure marks the
// action failed.
func (p *Processor) ProcessPending(ctx context.Context) (Stats, error) {
	var stats Stats

	pending, err := p.queue.Pending(ctx, p.config.BatchSize)
	if err != nil {
		return stats, err
	}

	if len(pending) == 0 {
		return stats, nil
	}

	p.logger.Info().Int("count", len(pending)).Msg("Processing pending actions")

	for _, a := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		log := p.logger.With().
			Int64("id", a.ID).
			Str("kind", string(a.Kind)).
			Int("target", a.TargetID).
			Logger()

		perr := p.performer.Perform(ctx, a)
		switch {
		case perr == nil:
			if err := p.queue.MarkDone(ctx, a.ID); err != nil {
				return stats, err
			}
			stats.Done++
			log.Info().Msg("Action delivered")
		case errors.Is(perr, context.Canceled) || errors.Is(perr, context.DeadlineExceeded):
			return stats, perr
		case isTemporary(perr) && a.Attempts+1 < p.config.MaxAttempts:
			if err := p.queue.MarkError(ctx, a.ID, perr.Error()); err != nil {
				return stats, err
			}
			stats.Retried++
			log.Warn().Err(perr).Int("attempts", a.Attempts+1).Msg("Action failed, will retry")
		default:
			if err := p.queue.MarkFailed(ctx, a.ID, perr.Error()); err != nil {
				return stats, err
			}
			stats.Failed++
			log.Error().Err(perr).Msg("Action failed permanently")
		}
	}

	return stats, nil
}

func isTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}
