package mediator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/application/mediator"
)

type pingCommand struct{ N int }

type pingHandler struct{}

func (pingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return request.(*pingCommand).N + 1, nil
}

func TestMediator_SendRunsMiddlewareInOrder(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}))

	var order []string
	m.Use(func(ctx context.Context, req mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		order = append(order, "outer")
		return next(ctx, req)
	})
	m.Use(func(ctx context.Context, req mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		order = append(order, "inner")
		return next(ctx, req)
	})

	// Act
	resp, err := m.Send(context.Background(), &pingCommand{N: 41})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, resp)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}))

	// Act
	dupErr := mediator.RegisterHandler[*pingCommand](m, pingHandler{})
	_, sendErr := m.Send(context.Background(), struct{}{})

	// Assert
	assert.Error(t, dupErr)
	assert.Error(t, sendErr)
}

func TestRequestName(t *testing.T) {
	assert.Equal(t, "pingCommand", mediator.RequestName(&pingCommand{}))
	assert.Equal(t, "pingCommand", mediator.RequestName(pingCommand{}))
	assert.Equal(t, "UnknownRequest", mediator.RequestName(nil))
}
