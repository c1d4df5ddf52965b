package session

import (
	"context"
	"reflect"

	"github.com/andrescamacho/requisition-go/internal/application/logging"
	"github.com/andrescamacho/requisition-go/internal/application/mediator"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

// SessionMiddleware makes sure every request runs inside a session.
//
// A request that arrives without one gets a fresh session named after its
// Operation field (or its type). A request that already carries one starts
// a new cycle on it, clearing per-cycle flags such as the looted marker.
func SessionMiddleware() mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if s := shared.SessionFromContext(ctx); s != nil {
			s.StartCycle()
			return next(ctx, request)
		}

		s := shared.NewSessionContext(operationName(request))
		ctx = shared.WithSessionContext(ctx, s)
		logging.LoggerFromContext(ctx).Log("DEBUG", "Session started", map[string]interface{}{
			"session":   s.ID,
			"operation": s.Operation,
		})
		return next(ctx, request)
	}
}

// operationName reads a string Operation field from the request, falling
// back to the request's type name
func operationName(request mediator.Request) string {
	v := reflect.ValueOf(request)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if f := v.FieldByName("Operation"); f.IsValid() && f.Kind() == reflect.String && f.String() != "" {
			return f.String()
		}
	}
	return mediator.RequestName(request)
}
