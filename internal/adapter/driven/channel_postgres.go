package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alorle/epg-manager/internal/channel"
)

const uniqueViolation = "23505"

// ChannelPostgresRepository implements the ChannelRepository port using PostgreSQL.
// Name and position uniqueness are backed by table constraints.
type ChannelPostgresRepository struct {
	pool *pgxpool.Pool
}

// NewChannelPostgresRepository creates a channel repository on top of pool.
func NewChannelPostgresRepository(pool *pgxpool.Pool) (*ChannelPostgresRepository, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	return &ChannelPostgresRepository{pool: pool}, nil
}

const channelColumns = `id, name, position, category`

// Save inserts a new channel.
func (r *ChannelPostgresRepository) Save(ctx context.Context, ch channel.Channel) (channel.Channel, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channels (`+channelColumns+`) VALUES ($1, $2, $3, $4)`,
		ch.ID(), ch.Name(), ch.Position(), ch.Category(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case "channels_name_unique":
				return channel.Channel{}, channel.ErrDuplicateName
			case "channels_position_unique":
				return channel.Channel{}, channel.ErrDuplicatePosition
			}
		}
		return channel.Channel{}, fmt.Errorf("insert channel: %w", err)
	}
	return ch, nil
}

// FindByID retrieves a channel by id.
func (r *ChannelPostgresRepository) FindByID(ctx context.Context, id string) (channel.Channel, error) {
	return r.queryOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
}

// FindByName retrieves a channel by exact name.
func (r *ChannelPostgresRepository) FindByName(ctx context.Context, name string) (channel.Channel, error) {
	return r.queryOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE name = $1`, name)
}

// FindByPosition retrieves the channel at position.
func (r *ChannelPostgresRepository) FindByPosition(ctx context.Context, position int) (channel.Channel, error) {
	return r.queryOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE position = $1`, position)
}

// FindAll returns every channel ordered by position.
func (r *ChannelPostgresRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	channels, err := pgx.CollectRows(rows, scanChannel)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if channels == nil {
		channels = []channel.Channel{}
	}
	return channels, nil
}

// Ping checks that the database answers.
func (r *ChannelPostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *ChannelPostgresRepository) queryOne(ctx context.Context, query string, arg any) (channel.Channel, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("query channel: %w", err)
	}

	ch, err := pgx.CollectExactlyOneRow(rows, scanChannel)
	if errors.Is(err, pgx.ErrNoRows) {
		return channel.Channel{}, channel.ErrChannelNotFound
	}
	if err != nil {
		return channel.Channel{}, fmt.Errorf("query channel: %w", err)
	}
	return ch, nil
}

func scanChannel(row pgx.CollectableRow) (channel.Channel, error) {
	var (
		id, name, category string
		position           int
	)
	if err := row.Scan(&id, &name, &position, &category); err != nil {
		return channel.Channel{}, err
	}
	return channel.Reconstruct(id, name, position, category), nil
}
