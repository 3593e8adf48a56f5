package grpc

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/msto63/euklid/pkg/core/logging"
)

// Created on first use so it picks up the process logging configuration
var interceptorLogger = sync.OnceValue(func() *logging.Logger { return logging.New("grpc") })

// RequestIDHeader is the metadata key carrying the request ID both ways
const RequestIDHeader = "x-request-id"

type requestIDKey struct{}

// WithRequestID returns a context whose calls carry requestID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the ID set by WithRequestID, or the one the caller
// sent in the incoming metadata
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}

// ensureRequestID returns the request ID of ctx, minting one if the caller
// sent none
func ensureRequestID(ctx context.Context) string {
	if id := GetRequestID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// recovered turns a handler panic into codes.Internal. It must be deferred
// directly.
func recovered(method string, err *error) {
	if r := recover(); r != nil {
		interceptorLogger().Error("gRPC handler panicked",
			"method", method,
			"panic", r,
			"stack", string(debug.Stack()),
		)
		*err = status.Error(codes.Internal, "internal server error")
	}
}

// finished logs a completed call. Server calls log at info, client calls at
// debug so a CLI talking to a server stays quiet.
func finished(side, method, requestID string, start time.Time, err error) {
	kv := []interface{}{
		"side", side,
		"method", method,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	}
	if requestID != "" {
		kv = append(kv, "request_id", requestID)
	}
	if side == "server" {
		interceptorLogger().Info("gRPC call", kv...)
		return
	}
	interceptorLogger().Debug("gRPC call", kv...)
}

// requestIDStream hands handlers a context holding the request ID
type requestIDStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *requestIDStream) Context() context.Context { return s.ctx }

// RecoveryInterceptor answers codes.Internal when a unary handler panics
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer recovered(info.FullMethod, &err)
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor answers codes.Internal when a stream handler
// panics
func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer recovered(info.FullMethod, &err)
		return handler(srv, ss)
	}
}

// RequestIDInterceptor puts the caller's request ID, or a fresh one, into
// the handler context and echoes it in the response header
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := ensureRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(WithRequestID(ctx, id), req)
	}
}

// StreamRequestIDInterceptor is RequestIDInterceptor for streams
func StreamRequestIDInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		id := ensureRequestID(ss.Context())
		_ = ss.SetHeader(metadata.Pairs(RequestIDHeader, id))
		return handler(srv, &requestIDStream{ServerStream: ss, ctx: WithRequestID(ss.Context(), id)})
	}
}

// ErrorInterceptor converts structured errors returned by handlers into
// gRPC status errors
func ErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return resp, ToStatus(err)
		}
		return resp, nil
	}
}

// LoggingInterceptor logs each unary call with its outcome
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		finished("server", info.FullMethod, GetRequestID(ctx), start, err)
		return resp, err
	}
}

// StreamLoggingInterceptor logs each stream once it ends
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		finished("server", info.FullMethod, GetRequestID(ss.Context()), start, err)
		return err
	}
}

// ClientRequestIDInterceptor sends the request ID of ctx, or a fresh one,
// with every unary call
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, ensureRequestID(ctx))
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ClientStreamRequestIDInterceptor is ClientRequestIDInterceptor for streams
func ClientStreamRequestIDInterceptor() grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, ensureRequestID(ctx))
		return streamer(ctx, desc, cc, method, opts...)
	}
}

// ClientLoggingInterceptor logs outgoing unary calls
func ClientLoggingInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		finished("client", method, GetRequestID(ctx), start, err)
		return err
	}
}

// ClientStreamLoggingInterceptor logs opening an outgoing stream
func ClientStreamLoggingInterceptor() grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		start := time.Now()
		stream, err := streamer(ctx, desc, cc, method, opts...)
		finished("client", method, GetRequestID(ctx), start, err)
		return stream, err
	}
}
