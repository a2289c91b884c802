package interceptor

import (
	"context"
	"time"

	otelinfra "finance-tracker/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor リクエストのログとメトリクスを記録するインターセプター
// metricsがnilの場合はログのみ記録する
func LoggingInterceptor(logger *otelinfra.Logger, metrics *otelinfra.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		code := status.Code(err)
		fields := map[string]interface{}{
			"method":      info.FullMethod,
			"code":        code.String(),
			"duration_ms": duration.Milliseconds(),
		}

		if metrics != nil {
			metrics.RecordRequest(ctx, "grpc", info.FullMethod)
			metrics.RecordResponseTime(ctx, "grpc", info.FullMethod, duration.Seconds())
			if code != codes.OK {
				metrics.RecordError(ctx, "grpc_"+code.String())
			}
		}

		switch code {
		case codes.OK:
			logger.Info(ctx, "gRPC request completed", fields)
		case codes.Internal, codes.Unknown, codes.Unavailable:
			logger.Error(ctx, "gRPC request failed", err, fields)
		default:
			logger.Warn(ctx, "gRPC request rejected", fields)
		}

		return resp, err
	}
}
