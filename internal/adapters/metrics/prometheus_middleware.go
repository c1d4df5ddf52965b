package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/requisition-go/internal/application/mediator"
)

// PrometheusMiddleware creates a middleware that records request execution metrics
//
// Request names are extracted via reflection without the package prefix,
// so "*resolution.ResolveRequirementsCommand" becomes "ResolveRequirementsCommand".
func PrometheusMiddleware(collector *RequestMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		name := mediator.RequestName(request)
		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordRequest(name, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}
