package watch

import (
	"context"
	"sort"
	"time"

	"github.com/imageforge/gateway/internal/service/logger"
	"github.com/imageforge/gateway/model"
)

// Reconciler bridges the gap between "submitted" and "first seen in the
// listing". One goroutine owns the loop, so a slow refresh is never
// re-entered by the next tick; refreshes only read and diff, never mutate
// server state.
type Reconciler struct {
	log      *Log
	client   *Client
	interval time.Duration

	lastSeen []string // sorted completed ids from the previous refresh
	stop     chan struct{}
	done     chan struct{}
}

func NewReconciler(log *Log, client *Client, interval time.Duration) *Reconciler {
	return &Reconciler{
		log:      log,
		client:   client,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the polling loop until Stop is called or the context ends. An
// immediate refresh precedes the first tick.
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		defer close(r.done)

		r.refresh(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.refresh(ctx)
			case <-r.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Reconciler) Stop() {
	close(r.stop)
	<-r.done
}

// refresh fetches the completed set and removes finished jobs from the local
// log. Comparison is by id-set equality, order-independent, so a listing
// that merely reshuffles causes no work. Fetch failures leave the log alone.
func (r *Reconciler) refresh(ctx context.Context) (changed bool, removed int) {
	records, err := r.client.Completed(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("unable to fetch completed jobs")
		return false, 0
	}

	ids := completedIDs(records)
	if equalIDs(ids, r.lastSeen) {
		return false, 0
	}
	r.lastSeen = ids

	completed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		completed[id] = struct{}{}
	}

	removed, err = r.log.RemoveCompleted(completed)
	if err != nil {
		logger.Log.Error().Err(err).Msg("unable to persist submitted-jobs log")
	}
	if removed > 0 {
		logger.Log.Info().Int("removed", removed).Msg("jobs completed")
	}
	return true, removed
}

func completedIDs(records []model.ArtifactRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	sort.Strings(ids)
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
