// Package epg assembles the published program guide out of registered
// channels and their schedules, and renders it as an XMLTV document.
package epg

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/alorle/epg-manager/internal/channel"
	"github.com/alorle/epg-manager/internal/program"
)

// Listing is one channel together with its scheduled programs.
type Listing struct {
	Channel  channel.Channel
	Programs []program.Program
}

// Guide is an immutable snapshot of the whole schedule. Channels are ordered
// by position and each channel's programs by start time.
type Guide struct {
	listings []Listing
}

// NewGuide validates and orders the listings. Every program must belong to
// the channel it is listed under and each channel may appear only once.
func NewGuide(listings []Listing) (Guide, error) {
	ordered := make([]Listing, 0, len(listings))
	seen := make(map[string]bool, len(listings))

	for _, l := range listings {
		id := l.Channel.ID()
		if seen[id] {
			return Guide{}, fmt.Errorf("%w: %s", ErrDuplicateChannel, id)
		}
		seen[id] = true

		programs := slices.Clone(l.Programs)
		for _, p := range programs {
			if p.ChannelID() != id {
				return Guide{}, fmt.Errorf("%w: program %s is on channel %s, listed under %s", ErrForeignProgram, p.ID(), p.ChannelID(), id)
			}
		}
		slices.SortStableFunc(programs, func(a, b program.Program) int {
			return a.StartTime().Compare(b.StartTime())
		})

		ordered = append(ordered, Listing{Channel: l.Channel, Programs: programs})
	}

	slices.SortStableFunc(ordered, func(a, b Listing) int {
		return cmp.Compare(a.Channel.Position(), b.Channel.Position())
	})

	return Guide{listings: ordered}, nil
}

// Listings returns the ordered listings.
func (g Guide) Listings() []Listing {
	return slices.Clone(g.listings)
}

// ProgramCount returns the number of programs across all channels.
func (g Guide) ProgramCount() int {
	n := 0
	for _, l := range g.listings {
		n += len(l.Programs)
	}
	return n
}
