package node

import (
	"context"
	"time"

	"github.com/lioia/markov-pagerank/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	protobuf "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const publishTimeout = 5 * time.Second // Upper bound for a queue publish

// Upper bound for a single job, on every transport
var rankTimeout = time.Minute

// Publisher is the part of *amqp.Channel used to send messages
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Worker consumes ranking jobs from the work queue and publishes the
// responses on the result queue
type Worker struct {
	Channel     Publisher
	ResultQueue string
}

// Consume handles deliveries until ctx is done or the channel is closed
func (w *Worker) Consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	utils.NodeLog("worker", "Waiting for jobs")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery runs one job. Undecodable jobs are dropped, jobs that
// fail to compute are answered with the error, and jobs whose result
// could not be published are requeued.
func (w *Worker) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	var job structpb.Struct
	if err := protobuf.Unmarshal(d.Body, &job); err != nil {
		reject(d, err)
		return
	}
	req, err := RequestFromStruct(&job)
	if err != nil {
		reject(d, err)
		return
	}
	if req.ID == "" {
		req.ID = d.CorrelationId
	}

	jobCtx, cancel := context.WithTimeout(ctx, rankTimeout)
	resp, err := Handle(jobCtx, req)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down: leave the job to another worker
			utils.FailOnNack(d, err)
			return
		}
		utils.WarnLog("worker", "Job %s failed: %v", resp.ID, err)
		resp.Error = err.Error()
	}

	if err := w.publish(ctx, resp); err != nil {
		utils.FailOnNack(d, err)
		return
	}
	// Ack
	if err := d.Ack(false); err != nil {
		utils.WarnLog("worker", "Could not ACK job %s: %v", resp.ID, err)
		return
	}
	utils.NodeLog("worker", "Completed job %s", resp.ID)
}

func (w *Worker) publish(ctx context.Context, resp RankResponse) error {
	s, err := resp.Struct()
	if err != nil {
		return err
	}
	data, err := protobuf.Marshal(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return w.Channel.PublishWithContext(ctx,
		"",
		w.ResultQueue, // routing key
		false,         // mandatory
		false,
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/x-protobuf",
			CorrelationId: resp.ID,
			Body:          data,
		})
}

func reject(d amqp.Delivery, err error) {
	utils.WarnLog("worker", "Dropping malformed job: %v", err)
	if err := d.Reject(false); err != nil {
		utils.WarnLog("worker", "Could not reject job: %v", err)
	}
}

// Submit publishes req on the work queue and returns its id
func Submit(ctx context.Context, ch Publisher, workQueue string, req RankRequest) (string, error) {
	if req.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return "", err
		}
		req.ID = id
	}
	s, err := req.Struct()
	if err != nil {
		return "", err
	}
	data, err := protobuf.Marshal(s)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = ch.PublishWithContext(ctx,
		"",
		workQueue, // routing key
		false,     // mandatory
		false,
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/x-protobuf",
			CorrelationId: req.ID,
			Body:          data,
		})
	if err != nil {
		return "", err
	}
	return req.ID, nil
}

// AwaitResult reads the result queue until the response of job id
// arrives. Results of other jobs are requeued.
func AwaitResult(ctx context.Context, msgs <-chan amqp.Delivery, id string) (RankResponse, error) {
	for {
		select {
		case <-ctx.Done():
			return RankResponse{}, ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return RankResponse{}, errors.New("result channel closed")
			}
			if d.CorrelationId != id {
				if err := d.Nack(false, true); err != nil {
					return RankResponse{}, err
				}
				continue
			}
			var s structpb.Struct
			if err := protobuf.Unmarshal(d.Body, &s); err != nil {
				_ = d.Reject(false)
				return RankResponse{}, errors.Wrapf(ErrBadRequest, "result of %s: %v", id, err)
			}
			if err := d.Ack(false); err != nil {
				return RankResponse{}, err
			}
			resp := ResponseFromStruct(&s)
			if resp.Error != "" {
				return resp, errors.Errorf("job %s failed: %s", id, resp.Error)
			}
			return resp, nil
		}
	}
}
