package node

import (
	"context"

	"github.com/lioia/markov-pagerank/pkg/rank"
	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const rankerServiceName = "pagerank.Ranker"

// RankerServer is the gRPC service computing ranks.
// Requests and responses are RankRequest and RankResponse as Structs.
type RankerServer interface {
	Rank(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Health(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

type RankerServerImpl struct{}

func (s *RankerServerImpl) Rank(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := RequestFromStruct(in)
	if err != nil {
		return nil, grpcError(err)
	}
	utils.ServerLog("gRPC rank request (%d pages)", len(req.Graph))
	ctx, cancel := context.WithTimeout(ctx, rankTimeout)
	defer cancel()
	resp, err := Handle(ctx, req)
	if err != nil {
		return nil, grpcError(err)
	}
	return resp.Struct()
}

func (s *RankerServerImpl) Health(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func grpcError(err error) error {
	switch {
	case isClientError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, rank.ErrNotConverged):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

func RegisterRankerServer(s grpc.ServiceRegistrar, srv RankerServer) {
	s.RegisterService(&rankerServiceDesc, srv)
}

var rankerServiceDesc = grpc.ServiceDesc{
	ServiceName: rankerServiceName,
	HandlerType: (*RankerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Rank", Handler: rankHandler},
		{MethodName: "Health", Handler: healthHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ranker.proto",
}

func rankHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankerServer).Rank(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + rankerServiceName + "/Rank"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RankerServer).Rank(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankerServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + rankerServiceName + "/Health"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RankerServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

type RankerClient interface {
	Rank(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type rankerClient struct {
	cc grpc.ClientConnInterface
}

func NewRankerClient(cc grpc.ClientConnInterface) RankerClient {
	return &rankerClient{cc}
}

func (c *rankerClient) Rank(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+rankerServiceName+"/Rank", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *rankerClient) Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/"+rankerServiceName+"/Health", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RankerCall opens a client to the ranker at url.
// Has to be closed (`c.Close()`)
func RankerCall(url string) (utils.Client[RankerClient], error) {
	return utils.Call(url, rankTimeout, NewRankerClient)
}
