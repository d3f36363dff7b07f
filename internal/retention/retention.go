// FilePath: internal/retention/retention.go
package retention

import (
	"context"
	"time"

	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Janitor periodically deletes telemetry older than the configured age.
// With MaxAge zero the janitor never runs and everything is kept.
type Janitor struct {
	data     repository.DeviceDataRepository
	maxAge   time.Duration
	interval time.Duration
	events   *nuts.EventEmitter
	stop     chan struct{}
}

// New creates a retention janitor.
func New(data repository.DeviceDataRepository, cfg config.RetentionConfig) *Janitor {
	return &Janitor{
		data:     data,
		maxAge:   cfg.MaxAge,
		interval: cfg.CheckInterval,
		events:   nuts.NewEventEmitter(),
		stop:     make(chan struct{}),
	}
}

// OnPrune registers a callback fired after each successful prune pass.
func (j *Janitor) OnPrune(handler func(id string)) {
	j.events.On("data.pruned", "retention_handler", func(id string) {
		handler(id)
	})
}

// Start launches the background prune loop. No-op when retention is
// disabled.
func (j *Janitor) Start() {
	if j.maxAge <= 0 {
		nuts.L.Infof("[Retention] Disabled, keeping all telemetry")
		return
	}

	nuts.L.Infof("[Retention] Pruning telemetry older than %v every %v", j.maxAge, j.interval)
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.prune()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop terminates the prune loop.
func (j *Janitor) Stop() {
	close(j.stop)
}

// RunOnce triggers a single prune pass immediately, regardless of the
// interval. No-op when retention is disabled.
func (j *Janitor) RunOnce() {
	if j.maxAge <= 0 {
		return
	}
	j.prune()
}

func (j *Janitor) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.maxAge)
	deleted, err := j.data.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		nuts.L.Errorf("[Retention] Prune failed: %v", err)
		return
	}
	if deleted > 0 {
		nuts.L.Infof("[Retention] Deleted %d records older than %v", deleted, cutoff)
		j.events.Emit("data.pruned", cutoff.Format(time.RFC3339))
	}
}
