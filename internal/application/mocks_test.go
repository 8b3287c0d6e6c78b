package application

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/alorle/epg-manager/internal/channel"
	"github.com/alorle/epg-manager/internal/failure"
	"github.com/alorle/epg-manager/internal/program"
)

// mockChannelRepository is a mock implementation of driven.ChannelRepository for testing.
type mockChannelRepository struct {
	saveFunc           func(ctx context.Context, ch channel.Channel) (channel.Channel, error)
	findByIDFunc       func(ctx context.Context, id string) (channel.Channel, error)
	findByNameFunc     func(ctx context.Context, name string) (channel.Channel, error)
	findByPositionFunc func(ctx context.Context, position int) (channel.Channel, error)
	findAllFunc        func(ctx context.Context) ([]channel.Channel, error)
	pingFunc           func(ctx context.Context) error
}

func (m *mockChannelRepository) Save(ctx context.Context, ch channel.Channel) (channel.Channel, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, ch)
	}
	return ch, nil
}

func (m *mockChannelRepository) FindByID(ctx context.Context, id string) (channel.Channel, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return channel.Channel{}, channel.ErrChannelNotFound
}

func (m *mockChannelRepository) FindByName(ctx context.Context, name string) (channel.Channel, error) {
	if m.findByNameFunc != nil {
		return m.findByNameFunc(ctx, name)
	}
	return channel.Channel{}, channel.ErrChannelNotFound
}

func (m *mockChannelRepository) FindByPosition(ctx context.Context, position int) (channel.Channel, error) {
	if m.findByPositionFunc != nil {
		return m.findByPositionFunc(ctx, position)
	}
	return channel.Channel{}, channel.ErrChannelNotFound
}

func (m *mockChannelRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []channel.Channel{}, nil
}

func (m *mockChannelRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// mockProgramRepository is a mock implementation of driven.ProgramRepository for testing.
type mockProgramRepository struct {
	saveFunc            func(ctx context.Context, p program.Program) (program.Program, error)
	findByIDFunc        func(ctx context.Context, id string) (program.Program, error)
	findByChannelIDFunc func(ctx context.Context, channelID string) ([]program.Program, error)
	findOverlappingFunc func(ctx context.Context, channelID string, start, end time.Time, excludeID string) (program.Program, error)
	deleteFunc          func(ctx context.Context, id string) error
}

func (m *mockProgramRepository) Save(ctx context.Context, p program.Program) (program.Program, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	return p, nil
}

func (m *mockProgramRepository) FindByID(ctx context.Context, id string) (program.Program, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return program.Program{}, program.ErrProgramNotFound
}

func (m *mockProgramRepository) FindByChannelID(ctx context.Context, channelID string) ([]program.Program, error) {
	if m.findByChannelIDFunc != nil {
		return m.findByChannelIDFunc(ctx, channelID)
	}
	return []program.Program{}, nil
}

func (m *mockProgramRepository) FindOverlapping(ctx context.Context, channelID string, start, end time.Time, excludeID string) (program.Program, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, channelID, start, end, excludeID)
	}
	return program.Program{}, program.ErrProgramNotFound
}

func (m *mockProgramRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockLocker records the keys of every Lock call.
type mockLocker struct {
	lockFunc func(ctx context.Context, keys ...string) (func(), error)
	calls    [][]string
	unlocks  int
}

func (m *mockLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	m.calls = append(m.calls, slices.Clone(keys))
	if m.lockFunc != nil {
		return m.lockFunc(ctx, keys...)
	}
	return func() { m.unlocks++ }, nil
}

var errStorage = errors.New("storage unavailable")

// assertBusiness fails the test unless err is a BusinessError with the given key and arguments.
func assertBusiness(t *testing.T, err error, key string, args ...string) {
	t.Helper()
	var business *failure.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("expected BusinessError %q, got %v", key, err)
	}
	assertFailure(t, business.MessageKey, business.Arguments, key, args)
}

// assertNotFound fails the test unless err is a ResourceNotFoundError with the given key and arguments.
func assertNotFound(t *testing.T, err error, key string, args ...string) {
	t.Helper()
	var notFound *failure.ResourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ResourceNotFoundError %q, got %v", key, err)
	}
	assertFailure(t, notFound.MessageKey, notFound.Arguments, key, args)
}

func assertFailure(t *testing.T, gotKey string, gotArgs []string, wantKey string, wantArgs []string) {
	t.Helper()
	if gotKey != wantKey {
		t.Errorf("message key = %q, want %q", gotKey, wantKey)
	}
	if wantArgs == nil {
		wantArgs = []string{}
	}
	if !slices.Equal(gotArgs, wantArgs) {
		t.Errorf("arguments = %q, want %q", gotArgs, wantArgs)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func ts(hour, minute int) time.Time {
	return time.Date(2024, time.March, 10, hour, minute, 0, 0, time.UTC)
}
