package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	expirationBatch   = 200
	expirationTimeout = 30 * time.Second
)

// QuoteExpirer moves lapsed quote offers to expired.
type QuoteExpirer interface {
	ExpireStale(ctx context.Context, batch int) (int, error)
}

// ExpirationJob runs the quote expiration sweep on a cron schedule.
type ExpirationJob struct {
	cron    *cron.Cron
	spec    string
	expirer QuoteExpirer
}

func NewExpirationJob(spec string, expirer QuoteExpirer) *ExpirationJob {
	return &ExpirationJob{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		spec:    spec,
		expirer: expirer,
	}
}

// Start schedules the sweep and starts the scheduler.
func (j *ExpirationJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.tick); err != nil {
		return fmt.Errorf("schedule quote expiration %q: %w", j.spec, err)
	}
	j.cron.Start()
	log.Printf("🚀 Expiration job started (%s)", j.spec)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *ExpirationJob) Stop() {
	<-j.cron.Stop().Done()
	log.Println("🛑 Expiration job stopped")
}

func (j *ExpirationJob) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), expirationTimeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		log.Printf("❌ Error expiring quotes: %v", err)
	}
}

// RunOnce performs a single sweep, draining in batches.
func (j *ExpirationJob) RunOnce(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := j.expirer.ExpireStale(ctx, expirationBatch)
		total += n
		if err != nil {
			return total, err
		}
		if n < expirationBatch {
			break
		}
	}
	if total > 0 {
		log.Printf("⏰ Expired %d quote offers", total)
	}
	return total, nil
}
