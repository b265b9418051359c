package persistence

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/live-caption-translator/pkg/icron"
	"github.com/MimeLyc/live-caption-translator/pkg/log"
)

// Janitor periodically deletes cache rows older than the configured TTL.
type Janitor struct {
	store    Store
	cron     *cron.Cron
	cronExpr string
	ttl      time.Duration
}

func NewJanitor(store Store, c *cron.Cron, cronExpr string, ttl time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		cron:     c,
		cronExpr: cronExpr,
		ttl:      ttl,
	}
}

// Schedule registers the sweep on the janitor's cron.
func (j *Janitor) Schedule(ctx context.Context) error {
	if info, err := icron.GetTriggerInfo(j.cronExpr, time.Now()); err == nil {
		log.Info("Cache sweep scheduled, next run in %v", info.TimeUntilNext)
	}

	_, err := j.cron.AddFunc(j.cronExpr, func() {
		j.sweep(ctx)
	})
	return err
}

func (j *Janitor) sweep(ctx context.Context) {
	deleted, err := j.store.DeleteExpired(ctx, time.Now().Add(-j.ttl))
	if err != nil {
		log.Error("Cache sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Info("Cache sweep removed %d expired translations", deleted)
	}
}
