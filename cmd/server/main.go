package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lioia/markov-pagerank/pkg/node"
	"github.com/lioia/markov-pagerank/pkg/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	// Read environment variables
	env, err := utils.ReadEnvVars()
	utils.FailOnError("Failed to read environment variables", err)
	err = utils.InitLog(env.NodeLog, env.ServerLog, env.LogLevel)
	utils.FailOnError("Failed to initialize logs", err)

	// Create connection
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", env.Host, env.Port))
	utils.FailOnError("Failed to listen for ranker server", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	// gRPC server
	server := grpc.NewServer()
	node.RegisterRankerServer(server, &node.RankerServerImpl{})
	eg.Go(func() error {
		logrus.Infof("Starting ranker at %s", lis.Addr())
		return server.Serve(lis)
	})

	// HTTP API
	api := node.NewApiServer()
	eg.Go(func() error {
		address := fmt.Sprintf("%s:%d", env.Host, env.ApiPort)
		logrus.Infof("Starting API server at %s", address)
		if err := api.Start(address); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Queue worker, only when RabbitMQ is configured
	if url := env.RabbitURL(); url != "" {
		queueConn, err := amqp.Dial(url)
		utils.FailOnError("Could not connect to RabbitMQ", err)
		defer queueConn.Close()
		ch, err := queueConn.Channel()
		utils.FailOnError("Failed to open a channel to RabbitMQ", err)
		defer ch.Close()

		work, err := utils.DeclareQueue(env.WorkQueue, ch)
		utils.FailOnError("Failed to declare '%s' queue", err, env.WorkQueue)
		_, err = utils.DeclareQueue(env.ResultQueue, ch)
		utils.FailOnError("Failed to declare '%s' queue", err, env.ResultQueue)
		msgs, err := ch.Consume(
			work.Name, // queue
			"",        // consumer
			false,     // auto-ack
			false,     // exclusive
			false,     // no-local
			false,     // no-wait
			nil,       // args
		)
		utils.FailOnError("Could not register a consumer for %s queue", err, work.Name)

		worker := &node.Worker{Channel: ch, ResultQueue: env.ResultQueue}
		eg.Go(func() error { return worker.Consume(ctx, msgs) })
	} else {
		utils.WarnLog("server", "RABBIT_HOST not set, queue worker disabled")
	}

	// Shutdown
	eg.Go(func() error {
		<-ctx.Done()
		server.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return api.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		utils.FailOnError("Server stopped", err)
	}
}
