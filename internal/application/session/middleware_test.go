package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/requisition-go/internal/application/mediator"
	"github.com/andrescamacho/requisition-go/internal/application/session"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
)

type namedCommand struct{ Operation string }

type anonymousCommand struct{}

func capture(out **shared.SessionContext) mediator.HandlerFunc {
	return func(ctx context.Context, req mediator.Request) (mediator.Response, error) {
		*out = shared.SessionFromContext(ctx)
		return nil, nil
	}
}

func TestSessionMiddleware_AttachesSession(t *testing.T) {
	// Arrange
	mw := session.SessionMiddleware()
	var named, anonymous *shared.SessionContext

	// Act
	_, err1 := mw(context.Background(), &namedCommand{Operation: "pre-task-setup"}, capture(&named))
	_, err2 := mw(context.Background(), &anonymousCommand{}, capture(&anonymous))

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NotNil(t, named)
	assert.Equal(t, "pre-task-setup", named.Operation)
	assert.True(t, named.IsValid())
	require.NotNil(t, anonymous)
	assert.Equal(t, "anonymousCommand", anonymous.Operation)
}

func TestSessionMiddleware_ReusesSessionAndStartsCycle(t *testing.T) {
	// Arrange
	existing := shared.NewSessionContext("loop")
	existing.MarkLooted()
	ctx := shared.WithSessionContext(context.Background(), existing)
	var seen *shared.SessionContext

	// Act
	_, err := session.SessionMiddleware()(ctx, &anonymousCommand{}, capture(&seen))

	// Assert
	require.NoError(t, err)
	assert.Same(t, existing, seen)
	assert.False(t, existing.LootedThisCycle())
}
