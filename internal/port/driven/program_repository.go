package driven

import (
	"context"
	"time"

	"github.com/alorle/epg-manager/internal/program"
)

// ProgramRepository defines the interface for program persistence operations.
type ProgramRepository interface {
	// Save inserts the program or replaces the stored program with the same id.
	Save(ctx context.Context, p program.Program) (program.Program, error)

	// FindByID retrieves a program by id. Returns program.ErrProgramNotFound
	// if the program does not exist.
	FindByID(ctx context.Context, id string) (program.Program, error)

	// FindByChannelID retrieves every program scheduled on channelID, ordered
	// by start time. Never returns a nil slice on success.
	FindByChannelID(ctx context.Context, channelID string) ([]program.Program, error)

	// FindOverlapping returns the earliest starting program on channelID whose
	// interval satisfies stored.start <= end && stored.end >= start. The program
	// with id excludeID is ignored; pass "" to consider all programs.
	// Returns program.ErrProgramNotFound if the interval is free.
	FindOverlapping(ctx context.Context, channelID string, start, end time.Time, excludeID string) (program.Program, error)

	// Delete removes a program by id. Returns program.ErrProgramNotFound
	// if the program does not exist.
	Delete(ctx context.Context, id string) error
}
