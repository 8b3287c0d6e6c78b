// Package program models scheduled guide entries and the rules that keep a
// channel's schedule consistent.
package program

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alorle/epg-manager/internal/failure"
)

// Gateway errors
var (
	ErrEmptyID         = errors.New("program id cannot be empty")
	ErrProgramNotFound = errors.New("program not found")
)

// Program is a titled, time-boxed entry that belongs to exactly one channel.
type Program struct {
	id          string
	channelID   string
	imageURL    string
	title       string
	description string
	startTime   time.Time
	endTime     time.Time
}

// Patch carries client supplied program fields. A nil field is absent: on
// creation that is a violation, on update the stored value is kept.
type Patch struct {
	ChannelID   *string
	ImageURL    *string
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// NewProgram checks that every field is present and that the time range is
// valid, then builds a program with the given id.
func NewProgram(id string, p Patch) (Program, error) {
	if strings.TrimSpace(id) == "" {
		return Program{}, ErrEmptyID
	}
	if err := p.ValidateRequired(); err != nil {
		return Program{}, err
	}
	if err := ValidateTimeRange(*p.StartTime, *p.EndTime); err != nil {
		return Program{}, err
	}
	return Program{
		id:          id,
		channelID:   strings.TrimSpace(*p.ChannelID),
		imageURL:    strings.TrimSpace(*p.ImageURL),
		title:       strings.TrimSpace(*p.Title),
		description: strings.TrimSpace(*p.Description),
		startTime:   *p.StartTime,
		endTime:     *p.EndTime,
	}, nil
}

// Reconstruct rebuilds a program from persisted values without validation.
func Reconstruct(id, channelID, imageURL, title, description string, startTime, endTime time.Time) Program {
	return Program{
		id:          id,
		channelID:   channelID,
		imageURL:    imageURL,
		title:       title,
		description: description,
		startTime:   startTime,
		endTime:     endTime,
	}
}

func (p Program) ID() string           { return p.id }
func (p Program) ChannelID() string    { return p.channelID }
func (p Program) ImageURL() string     { return p.imageURL }
func (p Program) Title() string        { return p.title }
func (p Program) Description() string  { return p.description }
func (p Program) StartTime() time.Time { return p.startTime }
func (p Program) EndTime() time.Time   { return p.endTime }

// Overlaps reports whether the program's interval intersects [start, end].
// Both bounds are inclusive, so a program ending exactly when another one
// starts counts as overlapping.
func (p Program) Overlaps(start, end time.Time) bool {
	return !p.startTime.After(end) && !p.endTime.Before(start)
}

// Unchanged reports whether the patch sets all six mutable fields to the
// values the program already has.
func (p Program) Unchanged(patch Patch) bool {
	channelID, ok1 := text(patch.ChannelID)
	imageURL, ok2 := text(patch.ImageURL)
	title, ok3 := text(patch.Title)
	description, ok4 := text(patch.Description)
	if !ok1 || !ok2 || !ok3 || !ok4 || patch.StartTime == nil || patch.EndTime == nil {
		return false
	}
	return channelID == p.channelID &&
		imageURL == p.imageURL &&
		title == p.title &&
		description == p.description &&
		patch.StartTime.Equal(p.startTime) &&
		patch.EndTime.Equal(p.endTime)
}

// Merge returns a copy of the program with every present patch field applied.
// The receiver is left untouched.
func (p Program) Merge(patch Patch) Program {
	merged := p
	if v, ok := text(patch.ChannelID); ok {
		merged.channelID = v
	}
	if v, ok := text(patch.ImageURL); ok {
		merged.imageURL = v
	}
	if v, ok := text(patch.Title); ok {
		merged.title = v
	}
	if v, ok := text(patch.Description); ok {
		merged.description = v
	}
	if patch.StartTime != nil {
		merged.startTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		merged.endTime = *patch.EndTime
	}
	return merged
}

type rule struct {
	broken func(Patch) bool
	field  string
}

// requiredRules are evaluated in declaration order.
var requiredRules = []rule{
	{broken: func(p Patch) bool { return missing(p.ChannelID) }, field: "channel id"},
	{broken: func(p Patch) bool { return missing(p.ImageURL) }, field: "image URL"},
	{broken: func(p Patch) bool { return missing(p.Title) }, field: "title"},
	{broken: func(p Patch) bool { return missing(p.Description) }, field: "description"},
	{broken: func(p Patch) bool { return p.StartTime == nil }, field: "start time"},
	{broken: func(p Patch) bool { return p.EndTime == nil }, field: "end time"},
}

// ValidateRequired returns a BusinessError naming the first missing field.
func (p Patch) ValidateRequired() error {
	for _, r := range requiredRules {
		if r.broken(p) {
			return failure.Business(fmt.Sprintf("Program needs to have a %s!", r.field))
		}
	}
	return nil
}

// ValidateTimeRange requires start to be strictly before end.
func ValidateTimeRange(start, end time.Time) error {
	args := fmt.Sprintf("Start time: %s; End time: %s", FormatTime(start), FormatTime(end))
	switch {
	case start.After(end):
		return failure.Business("The start time must be before the end time!", args)
	case start.Equal(end):
		return failure.Business("The start time and the end time are the same!", args)
	}
	return nil
}

// Validate re-checks the invariants a merged program must satisfy.
func (p Program) Validate() error {
	return ValidateTimeRange(p.startTime, p.endTime)
}

// ScheduleConflict builds the failure reported when existing already occupies
// part of the requested interval.
func ScheduleConflict(existing Program) error {
	start, end := FormatTime(existing.startTime), FormatTime(existing.endTime)
	return failure.Business(
		fmt.Sprintf("There is already a program starting at %s and ending at %s", start, end),
		fmt.Sprintf("Start time: %s; End time: %s", start, end),
	)
}

// NoProgramFound is returned by lookups of an unknown program id.
func NoProgramFound(id string) error {
	return failure.NotFound("No program found for this id: "+id, "Id: "+id)
}

// MissingUpdateTarget is returned when an update addresses an unknown program id.
func MissingUpdateTarget(id string) error {
	return failure.NotFound(fmt.Sprintf("Program with id %s not found!", id), "Id: "+id)
}

// UnknownChannel is returned when a program references a channel that does not exist.
func UnknownChannel(channelID string) error {
	return failure.NotFound(fmt.Sprintf("Channel with id %s not found!", channelID), "Id: "+channelID)
}

func missing(s *string) bool {
	_, ok := text(s)
	return !ok
}

// text treats nil and blank strings alike.
func text(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	v := strings.TrimSpace(*s)
	return v, v != ""
}
