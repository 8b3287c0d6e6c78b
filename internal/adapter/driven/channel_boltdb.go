package driven

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"github.com/alorle/epg-manager/internal/channel"
)

const (
	channelsBucket         = "channels"
	channelNamesBucket     = "channel_names"
	channelPositionsBucket = "channel_positions"
)

// ChannelBoltDBRepository implements the ChannelRepository port using BoltDB.
// Channels are stored by id; name and position index buckets enforce
// uniqueness inside the same write transaction as the insert.
type ChannelBoltDBRepository struct {
	db *bbolt.DB
}

// NewChannelBoltDBRepository creates a new BoltDB-backed channel repository.
// It initializes the required buckets if they don't exist.
func NewChannelBoltDBRepository(db *bbolt.DB) (*ChannelBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{channelsBucket, channelNamesBucket, channelPositionsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ChannelBoltDBRepository{db: db}, nil
}

// channelDTO is used for JSON serialization.
type channelDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Category string `json:"category"`
}

func channelToDTO(ch channel.Channel) channelDTO {
	return channelDTO{
		ID:       ch.ID(),
		Name:     ch.Name(),
		Position: ch.Position(),
		Category: ch.Category(),
	}
}

func dtoToChannel(dto channelDTO) channel.Channel {
	return channel.Reconstruct(dto.ID, dto.Name, dto.Position, dto.Category)
}

func positionKey(position int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(int64(position))^(1<<63))
	return key
}

// Save persists a new channel to BoltDB.
func (r *ChannelBoltDBRepository) Save(ctx context.Context, ch channel.Channel) (channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return channel.Channel{}, err
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		channels, names, positions, err := channelBuckets(tx)
		if err != nil {
			return err
		}

		id := []byte(ch.ID())
		if names.Get([]byte(ch.Name())) != nil {
			return channel.ErrDuplicateName
		}
		if positions.Get(positionKey(ch.Position())) != nil {
			return channel.ErrDuplicatePosition
		}

		data, err := json.Marshal(channelToDTO(ch))
		if err != nil {
			return err
		}

		if err := channels.Put(id, data); err != nil {
			return err
		}
		if err := names.Put([]byte(ch.Name()), id); err != nil {
			return err
		}
		return positions.Put(positionKey(ch.Position()), id)
	})
	if err != nil {
		return channel.Channel{}, err
	}

	return ch, nil
}

// FindByID retrieves a channel by its id from BoltDB.
func (r *ChannelBoltDBRepository) FindByID(ctx context.Context, id string) (channel.Channel, error) {
	return r.findVia(ctx, func(tx *bbolt.Tx) []byte { return []byte(id) })
}

// FindByName retrieves a channel by its name using the name index.
func (r *ChannelBoltDBRepository) FindByName(ctx context.Context, name string) (channel.Channel, error) {
	return r.findVia(ctx, func(tx *bbolt.Tx) []byte {
		return tx.Bucket([]byte(channelNamesBucket)).Get([]byte(name))
	})
}

// FindByPosition retrieves a channel by its position using the position index.
func (r *ChannelBoltDBRepository) FindByPosition(ctx context.Context, position int) (channel.Channel, error) {
	return r.findVia(ctx, func(tx *bbolt.Tx) []byte {
		return tx.Bucket([]byte(channelPositionsBucket)).Get(positionKey(position))
	})
}

// findVia resolves a channel id with lookup and loads the channel it points to.
func (r *ChannelBoltDBRepository) findVia(ctx context.Context, lookup func(tx *bbolt.Tx) []byte) (channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return channel.Channel{}, err
	}

	var ch channel.Channel

	err := r.db.View(func(tx *bbolt.Tx) error {
		channels, _, _, err := channelBuckets(tx)
		if err != nil {
			return err
		}

		id := lookup(tx)
		if id == nil {
			return channel.ErrChannelNotFound
		}

		data := channels.Get(id)
		if data == nil {
			return channel.ErrChannelNotFound
		}

		var dto channelDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		ch = dtoToChannel(dto)
		return nil
	})

	return ch, err
}

// FindAll retrieves all channels from BoltDB in id order.
func (r *ChannelBoltDBRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	channels := []channel.Channel{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errors.New("channels bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto channelDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			channels = append(channels, dtoToChannel(dto))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return channels, nil
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *ChannelBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		_, _, _, err := channelBuckets(tx)
		return err
	})
}

func channelBuckets(tx *bbolt.Tx) (channels, names, positions *bbolt.Bucket, err error) {
	channels = tx.Bucket([]byte(channelsBucket))
	names = tx.Bucket([]byte(channelNamesBucket))
	positions = tx.Bucket([]byte(channelPositionsBucket))
	if channels == nil || names == nil || positions == nil {
		return nil, nil, nil, errors.New("channels buckets not found")
	}
	return channels, names, positions, nil
}
