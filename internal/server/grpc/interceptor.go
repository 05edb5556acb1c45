package grpc

import (
	"context"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call with its status code and latency
// and reports it to the RPC recorder.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	method := path.Base(info.FullMethod)
	code := status.Code(err)
	s.recorder.RPCDone(method, code.String())

	args := []any{"method", method, "code", code.String(), "elapsed", time.Since(start)}
	if err != nil {
		s.logger.Warn(ctx, "rpc failed", append(args, "error", status.Convert(err).Message())...)
	} else {
		s.logger.Debug(ctx, "rpc", args...)
	}
	return resp, err
}
