package channel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alorle/epg-manager/internal/failure"
)

// Gateway errors
var (
	ErrEmptyID           = errors.New("channel id cannot be empty")
	ErrChannelNotFound   = errors.New("channel not found")
	ErrDuplicateName     = errors.New("channel name already taken")
	ErrDuplicatePosition = errors.New("channel position already taken")
)

// Channel represents a broadcast channel in the guide.
// Its id is assigned on creation and never changes.
type Channel struct {
	id       string
	name     string
	position int
	category string
}

// Draft carries the client supplied fields of a channel that is about to be
// registered. Position is a pointer so a missing position can be told apart
// from a zero one.
type Draft struct {
	Name     string
	Position *int
	Category string
}

// NewChannel validates the draft and builds a channel with the given id.
// Validation failures are returned as *failure.BusinessError.
func NewChannel(id string, d Draft) (Channel, error) {
	if strings.TrimSpace(id) == "" {
		return Channel{}, ErrEmptyID
	}
	if err := d.Validate(); err != nil {
		return Channel{}, err
	}
	return Channel{
		id:       id,
		name:     strings.TrimSpace(d.Name),
		position: *d.Position,
		category: strings.TrimSpace(d.Category),
	}, nil
}

// Reconstruct rebuilds a channel from persisted values without validation.
// It is meant for storage adapters only.
func Reconstruct(id, name string, position int, category string) Channel {
	return Channel{id: id, name: name, position: position, category: category}
}

// ID returns the channel identifier.
func (c Channel) ID() string {
	return c.id
}

// Name returns the channel name.
func (c Channel) Name() string {
	return c.name
}

// Position returns the broadcast slot of the channel.
func (c Channel) Position() int {
	return c.position
}

// Category returns the free-form classification of the channel.
func (c Channel) Category() string {
	return c.category
}

type rule struct {
	broken func(Draft) bool
	err    func(Draft) error
}

// draftRules are evaluated in order; the first broken rule wins.
var draftRules = []rule{
	{
		broken: func(d Draft) bool { return blank(d.Name) },
		err:    func(Draft) error { return failure.Business("Channel needs to have a name!") },
	},
	{
		broken: func(d Draft) bool { return d.Position == nil },
		err:    func(Draft) error { return failure.Business("Channel needs to have a position!") },
	},
	{
		broken: func(d Draft) bool { return *d.Position <= 0 },
		err:    func(Draft) error { return failure.Business("Channel needs to have a position bigger than 0!") },
	},
	{
		broken: func(d Draft) bool { return blank(d.Category) },
		err:    func(Draft) error { return failure.Business("Channel needs to have a category!") },
	},
}

// Validate checks the draft fields and returns the first violation found.
func (d Draft) Validate() error {
	for _, r := range draftRules {
		if r.broken(d) {
			return r.err(d)
		}
	}
	return nil
}

// NameTaken builds the failure returned when another channel already uses name.
func NameTaken(name string) error {
	return failure.Business(
		fmt.Sprintf("A channel with the name %s already exists!", name),
		"Name: "+name,
	)
}

// PositionTaken builds the failure returned when another channel already sits at position.
func PositionTaken(position int) error {
	return failure.Business(
		fmt.Sprintf("A channel in the position %d already exists!", position),
		fmt.Sprintf("Position: %d", position),
	)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
