package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
	"github.com/nadzzz/finecho/internal/transport"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "finecho.v1.VoiceCommands"

	// ProcessMethod is the full method name of the voice command RPC.
	ProcessMethod = "/" + ServiceName + "/Process"
)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*transport.CommandProcessor)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: processHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "finecho/v1/voice_commands",
}

func processHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.CommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	proc := srv.(transport.CommandProcessor)
	if interceptor == nil {
		return process(ctx, proc, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProcessMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return process(ctx, proc, req.(*message.CommandRequest))
	})
}

func process(ctx context.Context, proc transport.CommandProcessor, in *message.CommandRequest) (*message.CommandResponse, error) {
	resp, err := proc.ProcessCommand(ctx, *in)
	if err != nil {
		return nil, statusFor(err)
	}
	return resp, nil
}

// statusFor maps service errors onto gRPC status codes.
func statusFor(err error) error {
	switch {
	case errors.Is(err, finance.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, finance.ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	slog.Error("grpc command failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

// Client calls the VoiceCommands service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Process sends one voice command.
func (c *Client) Process(ctx context.Context, req message.CommandRequest, opts ...grpc.CallOption) (*message.CommandResponse, error) {
	out := new(message.CommandResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, ProcessMethod, &req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
