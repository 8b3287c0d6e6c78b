package driven

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alorle/epg-manager/internal/program"
)

// ProgramMemoryRepository keeps programs in process memory.
type ProgramMemoryRepository struct {
	mu       sync.RWMutex
	programs map[string]program.Program
}

// NewProgramMemoryRepository creates an empty in-memory program repository.
func NewProgramMemoryRepository() *ProgramMemoryRepository {
	return &ProgramMemoryRepository{programs: make(map[string]program.Program)}
}

// Save inserts or replaces a program by id.
func (r *ProgramMemoryRepository) Save(ctx context.Context, p program.Program) (program.Program, error) {
	if err := ctx.Err(); err != nil {
		return program.Program{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.programs[p.ID()] = p
	return p, nil
}

// FindByID retrieves a program by id.
func (r *ProgramMemoryRepository) FindByID(ctx context.Context, id string) (program.Program, error) {
	if err := ctx.Err(); err != nil {
		return program.Program{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.programs[id]
	if !ok {
		return program.Program{}, program.ErrProgramNotFound
	}
	return p, nil
}

// FindByChannelID returns the channel's programs ordered by start time.
func (r *ProgramMemoryRepository) FindByChannelID(ctx context.Context, channelID string) ([]program.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	programs := []program.Program{}
	for _, p := range r.programs {
		if p.ChannelID() == channelID {
			programs = append(programs, p)
		}
	}
	sortByStart(programs)
	return programs, nil
}

// FindOverlapping returns the earliest starting program that intersects [start, end].
func (r *ProgramMemoryRepository) FindOverlapping(ctx context.Context, channelID string, start, end time.Time, excludeID string) (program.Program, error) {
	programs, err := r.FindByChannelID(ctx, channelID)
	if err != nil {
		return program.Program{}, err
	}

	for _, p := range programs {
		if p.ID() != excludeID && p.Overlaps(start, end) {
			return p, nil
		}
	}
	return program.Program{}, program.ErrProgramNotFound
}

// Delete removes a program by id.
func (r *ProgramMemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.programs[id]; !ok {
		return program.ErrProgramNotFound
	}
	delete(r.programs, id)
	return nil
}

// sortByStart orders programs by start time, breaking ties by id so results
// are deterministic.
func sortByStart(programs []program.Program) {
	sort.Slice(programs, func(i, j int) bool {
		if !programs[i].StartTime().Equal(programs[j].StartTime()) {
			return programs[i].StartTime().Before(programs[j].StartTime())
		}
		return programs[i].ID() < programs[j].ID()
	})
}
