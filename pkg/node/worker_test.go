package node

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeAcknowledger struct {
	mu       sync.Mutex
	acked    int
	nacked   int
	rejected int
	requeued bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	a.requeued = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected++
	a.requeued = requeue
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []amqp.Publishing
	keys      []string
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	p.keys = append(p.keys, key)
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, msg amqp.Publishing) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{
		Acknowledger:  ack,
		ContentType:   msg.ContentType,
		CorrelationId: msg.CorrelationId,
		Body:          msg.Body,
	}
}

func decodeResponse(t *testing.T, msg amqp.Publishing) RankResponse {
	t.Helper()
	var s structpb.Struct
	require.NoError(t, protobuf.Unmarshal(msg.Body, &s))
	return ResponseFromStruct(&s)
}

func TestWorkerHandlesJob(t *testing.T) {
	work := &fakePublisher{}
	req := cycleRequest()
	req.ID = ""
	id, err := Submit(context.Background(), work, "work", req)
	require.NoError(t, err)
	require.Len(t, work.published, 1)
	assert.Equal(t, "work", work.keys[0])
	assert.Equal(t, id, work.published[0].CorrelationId)
	assert.Equal(t, "application/x-protobuf", work.published[0].ContentType)

	results := &fakePublisher{}
	w := &Worker{Channel: results, ResultQueue: "result"}
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), delivery(t, ack, work.published[0]))

	assert.Equal(t, 1, ack.acked)
	require.Len(t, results.published, 1)
	assert.Equal(t, "result", results.keys[0])
	assert.Equal(t, id, results.published[0].CorrelationId)
	resp := decodeResponse(t, results.published[0])
	assert.Equal(t, id, resp.ID)
	assert.Empty(t, resp.Error)
	assert.InDelta(t, 1.0, FromWire(resp.Iterated).Sum(), 1e-6)
}

func TestWorkerReportsFailedJob(t *testing.T) {
	work := &fakePublisher{}
	req := cycleRequest()
	req.Samples = ptr(-1)
	_, err := Submit(context.Background(), work, "work", req)
	require.NoError(t, err)

	results := &fakePublisher{}
	w := &Worker{Channel: results, ResultQueue: "result"}
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), delivery(t, ack, work.published[0]))

	assert.Equal(t, 1, ack.acked)
	require.Len(t, results.published, 1)
	resp := decodeResponse(t, results.published[0])
	assert.Equal(t, "job-1", resp.ID)
	assert.Contains(t, resp.Error, "sample count")
}

func TestWorkerRejectsMalformedJob(t *testing.T) {
	results := &fakePublisher{}
	w := &Worker{Channel: results, ResultQueue: "result"}
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte{0xff, 0x01}})

	assert.Equal(t, 1, ack.rejected)
	assert.False(t, ack.requeued)
	assert.Empty(t, results.published)
}

func TestWorkerRequeuesOnPublishFailure(t *testing.T) {
	work := &fakePublisher{}
	_, err := Submit(context.Background(), work, "work", cycleRequest())
	require.NoError(t, err)

	w := &Worker{Channel: &fakePublisher{err: errors.New("connection lost")}, ResultQueue: "result"}
	ack := &fakeAcknowledger{}
	w.HandleDelivery(context.Background(), delivery(t, ack, work.published[0]))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeued)
}

func TestWorkerConsume(t *testing.T) {
	work := &fakePublisher{}
	_, err := Submit(context.Background(), work, "work", cycleRequest())
	require.NoError(t, err)

	results := &fakePublisher{}
	w := &Worker{Channel: results, ResultQueue: "result"}
	ack := &fakeAcknowledger{}
	msgs := make(chan amqp.Delivery, 1)
	msgs <- delivery(t, ack, work.published[0])
	close(msgs)

	err = w.Consume(context.Background(), msgs)
	assert.Error(t, err)
	assert.Equal(t, 1, ack.acked)
	assert.Len(t, results.published, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Consume(ctx, make(chan amqp.Delivery)), context.Canceled)
}

func TestAwaitResult(t *testing.T) {
	results := &fakePublisher{}
	w := &Worker{Channel: results, ResultQueue: "result"}
	require.NoError(t, w.publish(context.Background(), RankResponse{ID: "other"}))
	require.NoError(t, w.publish(context.Background(), RankResponse{ID: "mine", Iterations: 3, Iterated: map[string]float64{"a": 1}}))
	require.NoError(t, w.publish(context.Background(), RankResponse{ID: "failed", Error: "did not converge"}))

	other := &fakeAcknowledger{}
	mine := &fakeAcknowledger{}
	msgs := make(chan amqp.Delivery, 3)
	msgs <- delivery(t, other, results.published[0])
	msgs <- delivery(t, mine, results.published[1])

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := AwaitResult(ctx, msgs, "mine")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Iterations)
	assert.Equal(t, map[string]float64{"a": 1}, resp.Iterated)
	assert.Equal(t, 1, other.nacked)
	assert.True(t, other.requeued)
	assert.Equal(t, 1, mine.acked)

	msgs <- delivery(t, &fakeAcknowledger{}, results.published[2])
	_, err = AwaitResult(ctx, msgs, "failed")
	assert.ErrorContains(t, err, "did not converge")
}
