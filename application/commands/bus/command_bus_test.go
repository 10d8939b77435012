package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	invalid bool
}

func (c stubCommand) Validate() error {
	if c.invalid {
		return errors.New("invalid command")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

func TestCommandBus_DispatchesByType(t *testing.T) {
	bus := NewCommandBus()

	var handled bool
	err := bus.Register(stubCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		handled = true
		return "done", nil
	}))
	require.NoError(t, err)

	result, err := bus.Send(context.Background(), stubCommand{})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "done", result)
}

func TestCommandBus_UnregisteredTypeFails(t *testing.T) {
	bus := NewCommandBus()

	_, err := bus.Send(context.Background(), otherCommand{})
	assert.Error(t, err)
}

func TestCommandBus_DuplicateRegistrationFails(t *testing.T) {
	bus := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return nil, nil
	})

	require.NoError(t, bus.Register(stubCommand{}, handler))
	assert.Error(t, bus.Register(stubCommand{}, handler))
}

func TestValidationMiddleware_BlocksInvalidCommands(t *testing.T) {
	bus := NewCommandBus(ValidationMiddleware())

	var handled bool
	err := bus.Register(stubCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		handled = true
		return nil, nil
	}))
	require.NoError(t, err)

	_, err = bus.Send(context.Background(), stubCommand{invalid: true})
	require.Error(t, err)
	assert.False(t, handled)

	_, err = bus.Send(context.Background(), stubCommand{})
	require.NoError(t, err)
	assert.True(t, handled)
}

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.errors = append(l.errors, msg)
}

func TestLoggingMiddleware_LogsFailures(t *testing.T) {
	logger := &recordingLogger{}
	bus := NewCommandBus(LoggingMiddleware(logger))

	err := bus.Register(stubCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return nil, errors.New("boom")
	}))
	require.NoError(t, err)

	_, err = bus.Send(context.Background(), stubCommand{})
	require.Error(t, err)
	assert.NotEmpty(t, logger.infos)
	assert.NotEmpty(t, logger.errors)
}

func TestPipeline_FirstMiddlewareRunsOutermost(t *testing.T) {
	var order []string
	outer := func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			order = append(order, "outer")
			return next.Handle(ctx, cmd)
		})
	}
	inner := func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			order = append(order, "inner")
			return next.Handle(ctx, cmd)
		})
	}

	bus := NewCommandBus(outer, inner)
	err := bus.Register(stubCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		order = append(order, "handler")
		return nil, nil
	}))
	require.NoError(t, err)

	_, err = bus.Send(context.Background(), stubCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
