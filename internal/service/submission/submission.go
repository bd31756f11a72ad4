package submission

import (
	"context"
	"fmt"

	"github.com/imageforge/gateway/internal/job"
	"github.com/imageforge/gateway/internal/job_tracer"
	"github.com/imageforge/gateway/internal/queue"
	"github.com/imageforge/gateway/internal/service/logger"
	"github.com/imageforge/gateway/internal/storage"
	"github.com/imageforge/gateway/internal/util"
	"github.com/imageforge/gateway/internal/validate"
	"github.com/imageforge/gateway/model"
)

// Kind tags which external effect of a submission failed. The transport
// layer produces the kind; callers must never classify by error text.
type Kind int

const (
	KindStorage Kind = iota + 1
	KindQueue
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStorage:
		return fmt.Sprintf("storage write failed: %v", e.Err)
	case KindQueue:
		return fmt.Sprintf("queue publish failed: %v", e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Service struct {
	storage    storage.Storage
	queue      queue.Queue
	limits     validate.Limits
	fastModels map[string]struct{}
}

func NewService(s storage.Storage, q queue.Queue, limits validate.Limits, fastModels []string) *Service {
	fm := make(map[string]struct{}, len(fastModels))
	for _, m := range fastModels {
		fm[m] = struct{}{}
	}
	return &Service{
		storage:    s,
		queue:      q,
		limits:     limits,
		fastModels: fm,
	}
}

// Submit validates the payload, finalizes a descriptor, persists it at
// {id}.json and publishes the identical bytes to the job's lane. A non-empty
// violation list means no side effect happened. Storage and queue failures
// come back as *Error with distinct kinds; neither is retried here, retry
// policy belongs to the caller.
//
// The storage write deliberately precedes the publish: workers resolve the
// job by reading {id}.json for the id carried in the message, so the object
// must exist before the message can be seen.
func (s *Service) Submit(ctx context.Context, payload map[string]any) (model.JobDescriptor, []string, error) {
	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "Submission/Submit")
	defer span.End()

	req, violations := validate.Validate(payload, s.limits)
	if len(violations) > 0 {
		return model.JobDescriptor{}, violations, nil
	}

	desc, body, err := job.Build(req)
	if err != nil {
		util.RecordSpanError(span, err)
		return model.JobDescriptor{}, nil, err
	}

	if err := s.storage.Upload(ctx, util.DescriptorKey(desc.ID), body, "application/json"); err != nil {
		util.RecordSpanError(span, err)
		return model.JobDescriptor{}, nil, &Error{Kind: KindStorage, Err: err}
	}

	if err := s.queue.Publish(ctx, s.lane(desc.Model), desc.ID, body); err != nil {
		util.RecordSpanError(span, err)
		// The stored object is inert without a message; it is left behind on
		// purpose so the submission can be replayed by an operator.
		return model.JobDescriptor{}, nil, &Error{Kind: KindQueue, Err: err}
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("id", desc.ID).
		Str("model", desc.Model).
		Str("lane", string(s.lane(desc.Model))).
		Msg("job submitted")

	return desc, nil, nil
}

func (s *Service) lane(model string) queue.Lane {
	if _, ok := s.fastModels[model]; ok {
		return queue.LaneFast
	}
	return queue.LaneSlow
}
