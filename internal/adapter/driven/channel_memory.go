package driven

import (
	"context"
	"sync"

	"github.com/alorle/epg-manager/internal/channel"
)

// ChannelMemoryRepository keeps channels in process memory in insertion order.
// Data is lost on restart; it backs the "memory" storage driver and tests.
type ChannelMemoryRepository struct {
	mu       sync.RWMutex
	channels []channel.Channel
}

// NewChannelMemoryRepository creates an empty in-memory channel repository.
func NewChannelMemoryRepository() *ChannelMemoryRepository {
	return &ChannelMemoryRepository{}
}

// Save appends a channel after enforcing name and position uniqueness.
func (r *ChannelMemoryRepository) Save(ctx context.Context, ch channel.Channel) (channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return channel.Channel{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.channels {
		if existing.Name() == ch.Name() {
			return channel.Channel{}, channel.ErrDuplicateName
		}
		if existing.Position() == ch.Position() {
			return channel.Channel{}, channel.ErrDuplicatePosition
		}
	}

	r.channels = append(r.channels, ch)
	return ch, nil
}

// FindByID retrieves a channel by id.
func (r *ChannelMemoryRepository) FindByID(ctx context.Context, id string) (channel.Channel, error) {
	return r.find(ctx, func(ch channel.Channel) bool { return ch.ID() == id })
}

// FindByName retrieves a channel by exact name.
func (r *ChannelMemoryRepository) FindByName(ctx context.Context, name string) (channel.Channel, error) {
	return r.find(ctx, func(ch channel.Channel) bool { return ch.Name() == name })
}

// FindByPosition retrieves the channel at position.
func (r *ChannelMemoryRepository) FindByPosition(ctx context.Context, position int) (channel.Channel, error) {
	return r.find(ctx, func(ch channel.Channel) bool { return ch.Position() == position })
}

// FindAll returns a copy of every stored channel.
func (r *ChannelMemoryRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]channel.Channel, len(r.channels))
	copy(channels, r.channels)
	return channels, nil
}

// Ping always succeeds unless the context is done.
func (r *ChannelMemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *ChannelMemoryRepository) find(ctx context.Context, match func(channel.Channel) bool) (channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return channel.Channel{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.channels {
		if match(ch) {
			return ch, nil
		}
	}
	return channel.Channel{}, channel.ErrChannelNotFound
}
