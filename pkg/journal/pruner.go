package journal

import (
	"context"
	"log/slog"
	"time"

	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/telemetry/metrics"
)

// RetentionConfig controls pruning.
type RetentionConfig struct {
	// RetentionDays deletes records older than this many days. Zero keeps them forever.
	RetentionDays int

	// MaxRecords keeps at most this many of the newest records. Zero means no cap.
	MaxRecords int64

	// PruneSchedule is a standard five-field cron expression.
	PruneSchedule string
}

// RetentionConfigFrom converts the journal section of the configuration file.
func RetentionConfigFrom(cfg config.JournalConfig) *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: cfg.RetentionDays,
		MaxRecords:    cfg.MaxRecords,
		PruneSchedule: cfg.PruneSchedule,
	}
}

// pruneBatch bounds how many IDs a single count-based delete names.
const pruneBatch = 500

// Pruner enforces retention on a journal.
type Pruner struct {
	storage Storage
	config  *RetentionConfig
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner creates a pruner. metrics may be nil.
func NewPruner(storage Storage, cfg *RetentionConfig, collector *metrics.Collector, logger *slog.Logger) *Pruner {
	if cfg == nil {
		cfg = &RetentionConfig{
			RetentionDays: config.DefaultJournalRetentionDays,
			PruneSchedule: config.DefaultJournalPruneSchedule,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  cfg,
		metrics: collector,
		logger:  logger.With("component", "journal.retention"),
		now:     time.Now,
	}
}

// Prune deletes records older than the retention period, then the oldest
// records beyond MaxRecords. It returns the total deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		n, err := p.storage.Delete(ctx, &Query{Until: &cutoff})
		if err != nil {
			return total, p.retentionError(err)
		}
		total += n
		p.logger.Debug("pruned records by age", "deleted_count", n, "cutoff", cutoff)
	}

	if p.config.MaxRecords > 0 {
		n, err := p.pruneByCount(ctx)
		total += n
		if err != nil {
			return total, p.retentionError(err)
		}
	}

	p.metrics.RecordJournalPruned(total)
	if total > 0 {
		p.logger.Info("journal pruning completed",
			"total_deleted", total,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}
	return total, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &Query{})
	if err != nil {
		return 0, err
	}
	excess := count - p.config.MaxRecords
	var deleted int64

	for excess > 0 {
		batch := int(min(excess, pruneBatch))
		oldest, err := p.storage.Query(ctx, &Query{Limit: batch, Oldest: true})
		if err != nil {
			return deleted, err
		}
		if len(oldest) == 0 {
			break
		}
		ids := make([]string, len(oldest))
		for i, r := range oldest {
			ids[i] = r.ID
		}
		n, err := p.storage.Delete(ctx, &Query{IDs: ids})
		if err != nil {
			return deleted, err
		}
		deleted += n
		excess -= int64(len(oldest))
	}

	if deleted > 0 {
		p.logger.Debug("pruned records by count", "deleted_count", deleted, "max_records", p.config.MaxRecords)
	}
	return deleted, nil
}

func (p *Pruner) retentionError(err error) error {
	return &RetentionError{
		RetentionDays: p.config.RetentionDays,
		MaxRecords:    p.config.MaxRecords,
		Cause:         err,
	}
}
