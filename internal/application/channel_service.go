package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alorle/epg-manager/internal/channel"
	"github.com/alorle/epg-manager/internal/failure"
	"github.com/alorle/epg-manager/internal/port/driven"
	"github.com/alorle/epg-manager/logging"
	"github.com/alorle/epg-manager/metrics"
)

// channelsLockKey serializes channel registrations, since name and position
// uniqueness span the whole registry.
const channelsLockKey = "channels"

// ChannelService provides the channel registry use cases.
// It depends only on domain packages and port interfaces.
type ChannelService struct {
	channelRepo driven.ChannelRepository
	locker      driven.ScheduleLocker
	logger      *slog.Logger
	newID       func() string
}

// NewChannelService creates a new ChannelService with the given repository and locker.
func NewChannelService(channelRepo driven.ChannelRepository, locker driven.ScheduleLocker, logger *slog.Logger) *ChannelService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ChannelService{
		channelRepo: channelRepo,
		locker:      locker,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// CreateChannel validates and registers a new channel.
// Validation and uniqueness failures are returned as *failure.BusinessError.
func (s *ChannelService) CreateChannel(ctx context.Context, draft channel.Draft) (channel.Channel, error) {
	ch, err := channel.NewChannel(s.newID(), draft)
	if err != nil {
		return channel.Channel{}, s.reject(err)
	}

	unlock, err := s.locker.Lock(ctx, channelsLockKey)
	if err != nil {
		return channel.Channel{}, fmt.Errorf("locking channel registry: %w", err)
	}
	defer unlock()

	if err := s.ensureUnique(ctx, ch); err != nil {
		return channel.Channel{}, s.reject(err)
	}

	saved, err := s.channelRepo.Save(ctx, ch)
	switch {
	case errors.Is(err, channel.ErrDuplicateName):
		return channel.Channel{}, s.reject(channel.NameTaken(ch.Name()))
	case errors.Is(err, channel.ErrDuplicatePosition):
		return channel.Channel{}, s.reject(channel.PositionTaken(ch.Position()))
	case err != nil:
		s.logger.Error("failed to save channel", "error", err, "channel_id", ch.ID())
		return channel.Channel{}, fmt.Errorf("saving channel: %w", err)
	}

	metrics.RecordChannelCreated()
	s.logger.Info("channel created",
		"event", logging.EventChannelCreated,
		"channel_id", saved.ID(),
		"name", saved.Name(),
		"position", saved.Position(),
	)
	return saved, nil
}

// GetAllChannels returns every registered channel. An empty registry yields
// an empty slice.
func (s *ChannelService) GetAllChannels(ctx context.Context) ([]channel.Channel, error) {
	channels, err := s.channelRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	if channels == nil {
		channels = []channel.Channel{}
	}
	return channels, nil
}

// ensureUnique checks the name before the position, so a draft that clashes
// on both reports the name.
func (s *ChannelService) ensureUnique(ctx context.Context, ch channel.Channel) error {
	_, err := s.channelRepo.FindByName(ctx, ch.Name())
	if err == nil {
		return channel.NameTaken(ch.Name())
	}
	if !errors.Is(err, channel.ErrChannelNotFound) {
		return fmt.Errorf("looking up channel name: %w", err)
	}

	_, err = s.channelRepo.FindByPosition(ctx, ch.Position())
	if err == nil {
		return channel.PositionTaken(ch.Position())
	}
	if !errors.Is(err, channel.ErrChannelNotFound) {
		return fmt.Errorf("looking up channel position: %w", err)
	}

	return nil
}

func (s *ChannelService) reject(err error) error {
	if _, _, ok := failure.Details(err); !ok {
		s.logger.Error("channel request failed", "error", err)
		return err
	}
	metrics.RecordRejection(err)
	s.logger.Debug("channel rejected", "event", logging.EventRequestRejected, "reason", err.Error())
	return err
}
