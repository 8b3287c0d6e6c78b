package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alorle/epg-manager/internal/channel"
	"github.com/alorle/epg-manager/internal/failure"
	"github.com/alorle/epg-manager/internal/program"
	"github.com/alorle/epg-manager/internal/port/driven"
	"github.com/alorle/epg-manager/logging"
	"github.com/alorle/epg-manager/metrics"
)

func scheduleLockKey(channelID string) string {
	return "schedule:" + channelID
}

// ProgramService provides the program scheduler use cases. Every write holds
// the schedule lock of each channel it touches across its checks and the
// final save, so two writers can never both pass the overlap check.
type ProgramService struct {
	programRepo driven.ProgramRepository
	channelRepo driven.ChannelRepository
	locker      driven.ScheduleLocker
	logger      *slog.Logger
	newID       func() string
}

// NewProgramService creates a new ProgramService.
func NewProgramService(programRepo driven.ProgramRepository, channelRepo driven.ChannelRepository, locker driven.ScheduleLocker, logger *slog.Logger) *ProgramService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ProgramService{
		programRepo: programRepo,
		channelRepo: channelRepo,
		locker:      locker,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// CreateProgram validates the patch and schedules a new program.
//
// Checks run in order and the first failure wins: required fields, time
// ordering, channel existence, overlap with the channel's existing programs.
func (s *ProgramService) CreateProgram(ctx context.Context, patch program.Patch) (program.Program, error) {
	p, err := program.NewProgram(s.newID(), patch)
	if err != nil {
		return program.Program{}, s.reject(err)
	}

	unlock, err := s.locker.Lock(ctx, scheduleLockKey(p.ChannelID()))
	if err != nil {
		return program.Program{}, fmt.Errorf("locking schedule: %w", err)
	}
	defer unlock()

	if err := s.checkSchedule(ctx, p, ""); err != nil {
		return program.Program{}, s.reject(err)
	}

	saved, err := s.programRepo.Save(ctx, p)
	if err != nil {
		s.logger.Error("failed to save program", "error", err, "program_id", p.ID())
		return program.Program{}, fmt.Errorf("saving program: %w", err)
	}

	metrics.RecordProgramWritten(metrics.OperationCreate)
	s.logger.Info("program created",
		"event", logging.EventProgramCreated,
		"program_id", saved.ID(),
		"channel_id", saved.ChannelID(),
	)
	return saved, nil
}

// GetAllProgramsByChannelID returns the channel's schedule. The channel is
// not required to exist; an unknown id yields an empty slice.
func (s *ProgramService) GetAllProgramsByChannelID(ctx context.Context, channelID string) ([]program.Program, error) {
	programs, err := s.programRepo.FindByChannelID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	if programs == nil {
		programs = []program.Program{}
	}
	return programs, nil
}

// GetProgramByID returns a program or a *failure.ResourceNotFoundError.
func (s *ProgramService) GetProgramByID(ctx context.Context, id string) (program.Program, error) {
	p, err := s.programRepo.FindByID(ctx, id)
	if errors.Is(err, program.ErrProgramNotFound) {
		return program.Program{}, s.reject(program.NoProgramFound(id))
	}
	if err != nil {
		return program.Program{}, fmt.Errorf("loading program: %w", err)
	}
	return p, nil
}

// UpdateProgramByID applies a partial update. Absent patch fields keep their
// stored values. A patch that restates all six fields unchanged returns the
// stored program without writing.
func (s *ProgramService) UpdateProgramByID(ctx context.Context, id string, patch program.Patch) (program.Program, error) {
	current, err := s.programRepo.FindByID(ctx, id)
	if errors.Is(err, program.ErrProgramNotFound) {
		return program.Program{}, s.reject(program.MissingUpdateTarget(id))
	}
	if err != nil {
		return program.Program{}, fmt.Errorf("loading program: %w", err)
	}

	if current.Unchanged(patch) {
		return current, nil
	}

	merged := current.Merge(patch)

	unlock, err := s.locker.Lock(ctx, scheduleLockKey(current.ChannelID()), scheduleLockKey(merged.ChannelID()))
	if err != nil {
		return program.Program{}, fmt.Errorf("locking schedule: %w", err)
	}
	defer unlock()

	// Re-read under the lock; a concurrent writer may have changed or
	// removed the program since the first read.
	latest, err := s.programRepo.FindByID(ctx, id)
	if errors.Is(err, program.ErrProgramNotFound) {
		return program.Program{}, s.reject(program.MissingUpdateTarget(id))
	}
	if err != nil {
		return program.Program{}, fmt.Errorf("loading program: %w", err)
	}
	if latest.ChannelID() != current.ChannelID() {
		unlock()
		return s.UpdateProgramByID(ctx, id, patch)
	}
	merged = latest.Merge(patch)

	if err := merged.Validate(); err != nil {
		return program.Program{}, s.reject(err)
	}
	if err := s.checkSchedule(ctx, merged, id); err != nil {
		return program.Program{}, s.reject(err)
	}

	saved, err := s.programRepo.Save(ctx, merged)
	if err != nil {
		s.logger.Error("failed to save program", "error", err, "program_id", id)
		return program.Program{}, fmt.Errorf("saving program: %w", err)
	}

	metrics.RecordProgramWritten(metrics.OperationUpdate)
	s.logger.Info("program updated",
		"event", logging.EventProgramUpdated,
		"program_id", saved.ID(),
		"channel_id", saved.ChannelID(),
	)
	return saved, nil
}

// DeleteProgramByID removes a program. deleted is false when no program with
// that id exists.
func (s *ProgramService) DeleteProgramByID(ctx context.Context, id string) (bool, error) {
	current, err := s.programRepo.FindByID(ctx, id)
	if errors.Is(err, program.ErrProgramNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading program: %w", err)
	}

	unlock, err := s.locker.Lock(ctx, scheduleLockKey(current.ChannelID()))
	if err != nil {
		return false, fmt.Errorf("locking schedule: %w", err)
	}
	defer unlock()

	err = s.programRepo.Delete(ctx, id)
	if errors.Is(err, program.ErrProgramNotFound) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("failed to delete program", "error", err, "program_id", id)
		return false, fmt.Errorf("deleting program: %w", err)
	}

	metrics.RecordProgramWritten(metrics.OperationDelete)
	s.logger.Info("program deleted", "event", logging.EventProgramDeleted, "program_id", id)
	return true, nil
}

// checkSchedule verifies that p's channel exists and that no other program
// of that channel overlaps p. excludeID is skipped during the overlap scan.
func (s *ProgramService) checkSchedule(ctx context.Context, p program.Program, excludeID string) error {
	_, err := s.channelRepo.FindByID(ctx, p.ChannelID())
	if errors.Is(err, channel.ErrChannelNotFound) {
		return program.UnknownChannel(p.ChannelID())
	}
	if err != nil {
		return fmt.Errorf("looking up channel: %w", err)
	}

	existing, err := s.programRepo.FindOverlapping(ctx, p.ChannelID(), p.StartTime(), p.EndTime(), excludeID)
	if err == nil {
		return program.ScheduleConflict(existing)
	}
	if !errors.Is(err, program.ErrProgramNotFound) {
		return fmt.Errorf("checking schedule overlap: %w", err)
	}
	return nil
}

// reject records a domain failure. Technical errors pass through and are
// logged at ERROR instead.
func (s *ProgramService) reject(err error) error {
	if _, _, ok := failure.Details(err); !ok {
		s.logger.Error("program request failed", "error", err)
		return err
	}
	metrics.RecordRejection(err)
	s.logger.Debug("program request rejected", "event", logging.EventRequestRejected, "reason", err.Error())
	return err
}
