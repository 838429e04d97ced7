package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/stats"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/factory-simulator/internal/logging"
)

const requestIDMetadataKey = "x-request-id"

// GRPCStatsHandler returns the OpenTelemetry server handler that opens a span
// per RPC on the global tracer provider.
func GRPCStatsHandler() stats.Handler {
	return otelgrpc.NewServerHandler()
}

// LoggingUnaryServerInterceptor logs every unary call at debug level with its
// method, status code and duration. An inbound x-request-id is carried into
// the log line.
func LoggingUnaryServerInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	base = logging.OrNoop(base)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []logging.Field{
			logging.String("method", info.FullMethod),
			logging.String("code", status.Code(err).String()),
			logging.Any("elapsed", time.Since(start)),
		}
		if id := requestID(ctx); id != "" {
			fields = append(fields, logging.String("request_id", id))
		}
		if err != nil {
			fields = append(fields, logging.Err(err))
		}
		base.Debug(ctx, "grpc request", fields...)
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(requestIDMetadataKey); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
