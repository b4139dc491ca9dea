package service

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/RowanDark/cifra/internal/logging"
	"github.com/RowanDark/cifra/internal/observability/metrics"
)

const healthPrefix = "/grpc.health.v1.Health/"

// UnaryServerInterceptor records request metrics, an rpc_call audit event
// and a debug log line for every unary call.
func UnaryServerInterceptor(logger *slog.Logger, audit *logging.AuditLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		metrics.RecordRPCRequest(info.FullMethod)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		elapsed := time.Since(start)
		metrics.ObserveRPCLatency(info.FullMethod, code.String(), elapsed)
		if err != nil {
			metrics.RecordRPCError(info.FullMethod, code.String())
		}
		if logger != nil {
			logger.Debug("rpc", "method", info.FullMethod, "code", code.String(), "duration", elapsed)
		}
		if audit != nil && !strings.HasPrefix(info.FullMethod, healthPrefix) && code != codes.Unauthenticated {
			_ = audit.Emit(logging.AuditEvent{
				EventType: logging.EventRPCCall,
				Decision:  logging.DecisionAllow,
				Metadata:  map[string]any{"method": info.FullMethod, "code": code.String()},
			})
		}
		return resp, err
	}
}

// AuthInterceptor requires "authorization: Bearer <token>" metadata on
// every call except health checks. An empty token disables the check.
func AuthInterceptor(token string, audit *logging.AuditLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if token == "" || strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}
		if !authorized(ctx, token) {
			if audit != nil {
				_ = audit.Emit(logging.AuditEvent{
					EventType: logging.EventRPCDenied,
					Decision:  logging.DecisionDeny,
					Reason:    "missing or invalid bearer token",
					Metadata:  map[string]any{"method": info.FullMethod},
				})
			}
			return nil, status.Error(codes.Unauthenticated, "invalid auth token")
		}
		return handler(ctx, req)
	}
}

func authorized(ctx context.Context, token string) bool {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	for _, value := range md.Get("authorization") {
		scheme, presented, found := strings.Cut(strings.TrimSpace(value), " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), []byte(token)) == 1 {
			return true
		}
	}
	return false
}

// NewGRPCServer returns a grpc.Server with the metrics and auth
// interceptors installed, plus any extra server options.
func NewGRPCServer(token string, logger *slog.Logger, audit *logging.AuditLogger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			UnaryServerInterceptor(logger, audit),
			AuthInterceptor(token, audit),
		),
	}, opts...)
	return grpc.NewServer(opts...)
}
