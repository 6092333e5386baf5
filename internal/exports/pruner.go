package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/arencloud/surveyboard/internal/logging"
	"github.com/robfig/cron/v3"
)

// Pruner wraps robfig/cron and drops tracked jobs older than the retention.
type Pruner struct {
	cron      *cron.Cron
	store     Store
	retention time.Duration
	logger    logging.Logger
	schedule  string
	now       func() time.Time
}

func NewPruner(store Store, retention time.Duration, logger logging.Logger) *Pruner {
	return &Pruner{
		cron:      cron.New(),
		store:     store,
		retention: retention,
		logger:    logger,
		schedule:  "@every 1h",
		now:       time.Now,
	}
}

// Start registers the prune job and starts the scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	if _, err := p.cron.AddFunc(p.schedule, func() { p.PruneOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	p.cron.Start()
	p.logger.Info("export pruner started", "schedule", p.schedule, "retention", p.retention.String())
	return nil
}

// Stop waits for a running prune to finish.
func (p *Pruner) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Pruner) PruneOnce(ctx context.Context) int64 {
	n, err := p.store.DeleteBefore(ctx, p.now().Add(-p.retention))
	if err != nil {
		p.logger.Error("export prune failed", "error", err)
		return 0
	}
	if n > 0 {
		p.logger.Info("export jobs pruned", "count", n)
	}
	return n
}
