package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/imageforge/gateway/internal/job_tracer"
	"github.com/imageforge/gateway/internal/queue"
	"github.com/imageforge/gateway/internal/util"
	"github.com/imageforge/gateway/model"
)

type Service struct {
	queue queue.Queue
	lanes []queue.Lane
}

func NewService(q queue.Queue, lanes []queue.Lane) *Service {
	return &Service{queue: q, lanes: lanes}
}

// Snapshots reads current depth for every configured lane in parallel and
// joins the results in lane order. Read-only: it never acknowledges or
// deletes anything. Any lane failure fails the whole call; partial depth
// numbers would be misleading on a dashboard.
func (s *Service) Snapshots(ctx context.Context) ([]model.QueueSnapshot, error) {
	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "Monitor/Snapshots")
	defer span.End()

	snapshots := make([]model.QueueSnapshot, len(s.lanes))
	errs := make([]error, len(s.lanes))

	var wg sync.WaitGroup
	for i, lane := range s.lanes {
		wg.Add(1)
		go func(i int, lane queue.Lane) {
			defer wg.Done()
			snapshots[i], errs[i] = s.queue.Depth(ctx, lane)
		}(i, lane)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			util.RecordSpanError(span, err)
			return nil, fmt.Errorf("unable to read depth for lane %s: %w", s.lanes[i], err)
		}
	}

	return snapshots, nil
}
