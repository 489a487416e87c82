package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/lioia/markov-pagerank/pkg/node"
	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	flags := &rankFlags{}
	var api string
	var queue bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "submit [corpus]",
		Short: "Send a graph to a ranker node (gRPC) or to the work queue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cmd, opts)
			if err != nil {
				return err
			}
			resource := graphArg(args, config)
			if resource == "" {
				return errors.New("no graph given")
			}
			g, err := graph.LoadGraphResource(resource)
			if err != nil {
				return err
			}
			req := node.NewRankRequest(g, config)

			var resp node.RankResponse
			if queue {
				resp, err = submitToQueue(cmd.Context(), req, timeout)
			} else {
				resp, err = submitToRanker(api, req)
			}
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&api, "api", "127.0.0.1:50051", "ranker gRPC address")
	cmd.Flags().BoolVar(&queue, "queue", false, "submit through RabbitMQ (RABBIT_* environment)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "how long to wait for a queued result")
	return cmd
}

func submitToRanker(api string, req node.RankRequest) (node.RankResponse, error) {
	client, err := node.RankerCall(api)
	if err != nil {
		return node.RankResponse{}, err
	}
	defer client.Close()
	in, err := req.Struct()
	if err != nil {
		return node.RankResponse{}, err
	}
	out, err := client.Client.Rank(client.Ctx, in)
	if err != nil {
		return node.RankResponse{}, err
	}
	return node.ResponseFromStruct(out), nil
}

func submitToQueue(ctx context.Context, req node.RankRequest, timeout time.Duration) (node.RankResponse, error) {
	env, err := utils.ReadEnvVars()
	if err != nil {
		return node.RankResponse{}, err
	}
	url := env.RabbitURL()
	if url == "" {
		return node.RankResponse{}, errors.New("RABBIT_HOST not set")
	}
	// Connect to RabbitMQ
	queueConn, err := amqp.Dial(url)
	if err != nil {
		return node.RankResponse{}, errors.Wrap(err, "could not connect to RabbitMQ")
	}
	defer queueConn.Close()
	ch, err := queueConn.Channel()
	if err != nil {
		return node.RankResponse{}, err
	}
	defer ch.Close()
	if _, err := utils.DeclareQueue(env.WorkQueue, ch); err != nil {
		return node.RankResponse{}, err
	}
	result, err := utils.DeclareQueue(env.ResultQueue, ch)
	if err != nil {
		return node.RankResponse{}, err
	}

	id, err := node.Submit(ctx, ch, env.WorkQueue, req)
	if err != nil {
		return node.RankResponse{}, err
	}
	utils.NodeLog("client", "Submitted job %s", id)
	msgs, err := ch.Consume(
		result.Name, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return node.RankResponse{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return node.AwaitResult(ctx, msgs, id)
}

func writeResponse(out io.Writer, resp node.RankResponse) error {
	fmt.Fprintf(out, "Results of job %s\n", resp.ID)
	fmt.Fprintln(out, "PageRank Results from Sampling")
	if err := node.FromWire(resp.Sampled).Write(out); err != nil {
		return err
	}
	fmt.Fprintln(out, "PageRank Results from Iteration")
	if err := node.FromWire(resp.Iterated).Write(out); err != nil {
		return err
	}
	if resp.Reference != nil {
		fmt.Fprintln(out, "PageRank Results from gonum")
		if err := node.FromWire(resp.Reference).Write(out); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "Converged after %d iteration(s), max deviation %.4f\n", resp.Iterations, resp.MaxDeviation)
	return err
}
