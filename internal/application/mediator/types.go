package mediator

import (
	"context"
	"reflect"
	"strings"
)

// Request is a command or query dispatched through the mediator
type Request interface{}

// Response is whatever the handler returns; callers type-assert it
type Response interface{}

// RequestHandler handles a specific request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is a function that handles a request
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps handler execution with cross-cutting concerns such as
// sessions and request metrics
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// RequestName returns the request's type name without package or pointer,
// so *resolution.ResolveRequirementsCommand becomes "ResolveRequirementsCommand"
func RequestName(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
