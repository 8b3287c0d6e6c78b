package application

import (
	"context"
	"fmt"

	"github.com/alorle/epg-manager/internal/epg"
	"github.com/alorle/epg-manager/internal/port/driven"
)

// GuideService assembles the published program guide from the registry and
// every channel's schedule.
type GuideService struct {
	channelRepo driven.ChannelRepository
	programRepo driven.ProgramRepository
}

// NewGuideService creates a new GuideService.
func NewGuideService(channelRepo driven.ChannelRepository, programRepo driven.ProgramRepository) *GuideService {
	return &GuideService{
		channelRepo: channelRepo,
		programRepo: programRepo,
	}
}

// BuildGuide returns a snapshot of all channels and their programs.
func (s *GuideService) BuildGuide(ctx context.Context) (epg.Guide, error) {
	channels, err := s.channelRepo.FindAll(ctx)
	if err != nil {
		return epg.Guide{}, fmt.Errorf("listing channels: %w", err)
	}

	listings := make([]epg.Listing, 0, len(channels))
	for _, ch := range channels {
		programs, err := s.programRepo.FindByChannelID(ctx, ch.ID())
		if err != nil {
			return epg.Guide{}, fmt.Errorf("listing programs of channel %s: %w", ch.ID(), err)
		}
		listings = append(listings, epg.Listing{Channel: ch, Programs: programs})
	}

	return epg.NewGuide(listings)
}
