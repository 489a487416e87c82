package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type Client[T any] struct {
	Client T
	Ctx    context.Context
	conn   *grpc.ClientConn
	cancel context.CancelFunc
}

// Utility function to create a gRPC client to `url`
// Has to be closed (`c.Close()`)
func Call[T any](url string, timeout time.Duration, newClient func(grpc.ClientConnInterface) T) (Client[T], error) {
	conn, err := grpc.Dial(
		url,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return Client[T]{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return Client[T]{
		Client: newClient(conn),
		Ctx:    ctx,
		conn:   conn,
		cancel: cancel,
	}, nil
}

func (c Client[T]) Close() {
	c.cancel()
	c.conn.Close()
}

func FailOnError(format string, err error, v ...any) {
	if err != nil {
		logrus.Fatalf("%s: %v", fmt.Sprintf(format, v...), err)
	}
}
