package jetstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imageforge/gateway/internal/job_tracer"
	"github.com/imageforge/gateway/internal/queue"
	"github.com/imageforge/gateway/internal/util"
	"github.com/imageforge/gateway/model"
)

const streamName = "JOBS"

type JetStreamClient struct {
	connection *nats.Conn
	context    nats.JetStreamContext
}

// NewJetStreamClient connects to NATS and ensures the JOBS stream plus one
// durable consumer per lane exist. Each job publishes to its own subject
// under jobs.<lane>.<id>, so the ordering lane is per job, never shared.
func NewJetStreamClient(url string) (queue.Queue, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Name("imageforge-gateway"),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"jobs.>"},
	})

	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return nil, err
	}

	for _, lane := range queue.Lanes() {
		_, err = js.AddConsumer(streamName, &nats.ConsumerConfig{
			Durable:       consumerName(lane),
			FilterSubject: fmt.Sprintf("jobs.%s.>", lane),
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       20 * time.Second,
			MaxDeliver:    5,
			BackOff: []time.Duration{
				5 * time.Second,
				15 * time.Second,
				30 * time.Second,
			},
			DeliverPolicy: nats.DeliverNewPolicy,
		})

		if err != nil && !strings.Contains(err.Error(), "consumer name already in use") {
			return nil, err
		}
	}

	return &JetStreamClient{
		connection: nc,
		context:    js,
	}, nil
}

func (c *JetStreamClient) Publish(ctx context.Context, lane queue.Lane, groupID string, body []byte) error {
	tracer := job_tracer.GetTracer()
	_, span := tracer.Start(ctx, "JetStream/Publish")
	defer span.End()

	subject := fmt.Sprintf("jobs.%s.%s", lane, groupID)
	_, err := c.context.Publish(subject, body, nats.MsgId(groupID), nats.Context(ctx))
	if err != nil {
		util.RecordSpanError(span, err)
		return err
	}
	return nil
}

// Depth reads consumer counters: NumPending is not-yet-claimed, NumAckPending
// is claimed-but-unacknowledged. Purely observational.
func (c *JetStreamClient) Depth(ctx context.Context, lane queue.Lane) (model.QueueSnapshot, error) {
	tracer := job_tracer.GetTracer()
	_, span := tracer.Start(ctx, "JetStream/Depth")
	defer span.End()

	info, err := c.context.ConsumerInfo(streamName, consumerName(lane), nats.Context(ctx))
	if err != nil {
		util.RecordSpanError(span, err)
		return model.QueueSnapshot{}, err
	}

	return model.QueueSnapshot{
		QueueName:         string(lane),
		MessagesAvailable: info.NumPending,
		MessagesInFlight:  uint64(info.NumAckPending),
	}, nil
}

func (c *JetStreamClient) Shutdown() {
	c.connection.Drain()
	c.connection.Close()
}

func consumerName(lane queue.Lane) string {
	return fmt.Sprintf("worker-%s", lane)
}
