package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RetryPending(ctx context.Context) (usecase.CleanupResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(usecase.CleanupResult), args.Error(1)
}

func TestMediaCleanup_RunsUntilCancelled(t *testing.T) {
	runner := new(MockRunner)
	calls := make(chan struct{}, 10)
	runner.On("RetryPending", mock.Anything).Run(func(mock.Arguments) {
		select {
		case calls <- struct{}{}:
		default:
		}
	}).Return(usecase.CleanupResult{}, errors.New("mongo down"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewMediaCleanup(runner, 5*time.Millisecond, logger.NewNop()).Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("worker did not tick")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestMediaCleanup_DisabledReturnsImmediately(t *testing.T) {
	runner := new(MockRunner)
	w := NewMediaCleanup(runner, 0, logger.NewNop())

	finished := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("disabled worker should return")
	}
	assert.Empty(t, runner.Calls)
}
