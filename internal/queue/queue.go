package queue

import (
	"context"

	"github.com/imageforge/gateway/model"
)

// Lane is a logical work queue. Lanes are a fixed, small set; routing
// between them is the submission service's concern.
type Lane string

const (
	LaneFast Lane = "fast"
	LaneSlow Lane = "slow"
)

func Lanes() []Lane {
	return []Lane{LaneFast, LaneSlow}
}

// Queue publishes job bodies and reports per-lane depth. The groupID is the
// ordering key: it must be unique per submission so unrelated jobs never
// serialize behind one another.
type Queue interface {
	Publish(ctx context.Context, lane Lane, groupID string, body []byte) error
	Depth(ctx context.Context, lane Lane) (model.QueueSnapshot, error)
	Shutdown()
}
