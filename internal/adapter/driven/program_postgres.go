package driven

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alorle/epg-manager/internal/program"
)

// ProgramPostgresRepository implements the ProgramRepository port using PostgreSQL.
type ProgramPostgresRepository struct {
	pool *pgxpool.Pool
}

// NewProgramPostgresRepository creates a program repository on top of pool.
func NewProgramPostgresRepository(pool *pgxpool.Pool) (*ProgramPostgresRepository, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	return &ProgramPostgresRepository{pool: pool}, nil
}

const programColumns = `id, channel_id, image_url, title, description, start_time, end_time`

// Save upserts a program by id.
func (r *ProgramPostgresRepository) Save(ctx context.Context, p program.Program) (program.Program, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO programs (`+programColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   channel_id = EXCLUDED.channel_id, image_url = EXCLUDED.image_url,
		   title = EXCLUDED.title, description = EXCLUDED.description,
		   start_time = EXCLUDED.start_time, end_time = EXCLUDED.end_time`,
		p.ID(), p.ChannelID(), p.ImageURL(), p.Title(), p.Description(), p.StartTime().UTC(), p.EndTime().UTC(),
	)
	if err != nil {
		return program.Program{}, fmt.Errorf("upsert program: %w", err)
	}
	return p, nil
}

// FindByID retrieves a program by id.
func (r *ProgramPostgresRepository) FindByID(ctx context.Context, id string) (program.Program, error) {
	return r.queryOne(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id)
}

// FindByChannelID returns the channel's programs ordered by start time.
func (r *ProgramPostgresRepository) FindByChannelID(ctx context.Context, channelID string) ([]program.Program, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+programColumns+` FROM programs WHERE channel_id = $1 ORDER BY start_time, id`,
		channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	programs, err := pgx.CollectRows(rows, scanProgram)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	if programs == nil {
		programs = []program.Program{}
	}
	return programs, nil
}

// FindOverlapping returns the earliest starting program that intersects [start, end].
func (r *ProgramPostgresRepository) FindOverlapping(ctx context.Context, channelID string, start, end time.Time, excludeID string) (program.Program, error) {
	return r.queryOne(ctx,
		`SELECT `+programColumns+` FROM programs
		 WHERE channel_id = $1 AND start_time <= $3 AND end_time >= $2 AND id <> $4
		 ORDER BY start_time, id
		 LIMIT 1`,
		channelID, start.UTC(), end.UTC(), excludeID,
	)
}

// Delete removes a program by id.
func (r *ProgramPostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return program.ErrProgramNotFound
	}
	return nil
}

func (r *ProgramPostgresRepository) queryOne(ctx context.Context, query string, args ...any) (program.Program, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return program.Program{}, fmt.Errorf("query program: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProgram)
	if errors.Is(err, pgx.ErrNoRows) {
		return program.Program{}, program.ErrProgramNotFound
	}
	if err != nil {
		return program.Program{}, fmt.Errorf("query program: %w", err)
	}
	return p, nil
}

func scanProgram(row pgx.CollectableRow) (program.Program, error) {
	var (
		id, channelID, imageURL, title, description string
		start, end                                  time.Time
	)
	if err := row.Scan(&id, &channelID, &imageURL, &title, &description, &start, &end); err != nil {
		return program.Program{}, err
	}
	return program.Reconstruct(id, channelID, imageURL, title, description, start.UTC(), end.UTC()), nil
}
