package driven

import (
	"context"

	"github.com/alorle/epg-manager/internal/channel"
)

// ChannelRepository defines the interface for channel persistence operations.
// This is a driven port implemented by the memory, BoltDB and PostgreSQL adapters.
type ChannelRepository interface {
	// Save persists a new channel and returns the stored value.
	// Returns channel.ErrDuplicateName or channel.ErrDuplicatePosition when the
	// store already holds a channel with the same name or position.
	Save(ctx context.Context, ch channel.Channel) (channel.Channel, error)

	// FindByID retrieves a channel by id. Returns channel.ErrChannelNotFound
	// if the channel does not exist.
	FindByID(ctx context.Context, id string) (channel.Channel, error)

	// FindByName retrieves a channel by its exact, case-sensitive name.
	// Returns channel.ErrChannelNotFound if no channel matches.
	FindByName(ctx context.Context, name string) (channel.Channel, error)

	// FindByPosition retrieves the channel at position. Returns
	// channel.ErrChannelNotFound if the slot is free.
	FindByPosition(ctx context.Context, position int) (channel.Channel, error)

	// FindAll retrieves all channels. Never returns a nil slice on success.
	FindAll(ctx context.Context) ([]channel.Channel, error)

	// Ping checks if the repository (database) is accessible and operational.
	Ping(ctx context.Context) error
}
