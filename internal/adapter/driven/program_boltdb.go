package driven

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"github.com/alorle/epg-manager/internal/program"
)

const (
	programsBucket        = "programs"
	channelProgramsBucket = "channel_programs"
)

// ProgramBoltDBRepository implements the ProgramRepository port using BoltDB.
//
// Programs are stored by id. The channel_programs bucket holds one nested
// bucket per channel whose keys are the program start time followed by the
// program id, so a cursor walks a channel's schedule in start order.
type ProgramBoltDBRepository struct {
	db *bbolt.DB
}

// NewProgramBoltDBRepository creates a new BoltDB-backed program repository.
func NewProgramBoltDBRepository(db *bbolt.DB) (*ProgramBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(programsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(channelProgramsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ProgramBoltDBRepository{db: db}, nil
}

// programDTO is used for JSON serialization.
type programDTO struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channel_id"`
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

func programToDTO(p program.Program) programDTO {
	return programDTO{
		ID:          p.ID(),
		ChannelID:   p.ChannelID(),
		ImageURL:    p.ImageURL(),
		Title:       p.Title(),
		Description: p.Description(),
		StartTime:   p.StartTime().UTC().Format(time.RFC3339Nano),
		EndTime:     p.EndTime().UTC().Format(time.RFC3339Nano),
	}
}

func dtoToProgram(dto programDTO) (program.Program, error) {
	start, err := time.Parse(time.RFC3339Nano, dto.StartTime)
	if err != nil {
		return program.Program{}, err
	}
	end, err := time.Parse(time.RFC3339Nano, dto.EndTime)
	if err != nil {
		return program.Program{}, err
	}
	return program.Reconstruct(dto.ID, dto.ChannelID, dto.ImageURL, dto.Title, dto.Description, start, end), nil
}

// scheduleKey orders entries by start time: Unix seconds with the sign bit
// flipped so earlier instants sort first, then the nanosecond remainder, then
// the program id. Unlike UnixNano this covers every representable year.
func scheduleKey(start time.Time, id string) []byte {
	key := make([]byte, 12, 12+len(id))
	binary.BigEndian.PutUint64(key[:8], uint64(start.Unix())^(1<<63))
	binary.BigEndian.PutUint32(key[8:], uint32(start.Nanosecond()))
	return append(key, id...)
}

// Save inserts or replaces a program and keeps the schedule index in sync.
func (r *ProgramBoltDBRepository) Save(ctx context.Context, p program.Program) (program.Program, error) {
	if err := ctx.Err(); err != nil {
		return program.Program{}, err
	}

	err := r.db.Update(func(tx *bbolt.Tx) error {
		programs, schedules, err := programBuckets(tx)
		if err != nil {
			return err
		}

		id := []byte(p.ID())

		// Drop the index entry of the previous version, its channel or start may change.
		if data := programs.Get(id); data != nil {
			var previous programDTO
			if err := json.Unmarshal(data, &previous); err != nil {
				return err
			}
			old, err := dtoToProgram(previous)
			if err != nil {
				return err
			}
			if schedule := schedules.Bucket([]byte(old.ChannelID())); schedule != nil {
				if err := schedule.Delete(scheduleKey(old.StartTime(), old.ID())); err != nil {
					return err
				}
			}
		}

		data, err := json.Marshal(programToDTO(p))
		if err != nil {
			return err
		}
		if err := programs.Put(id, data); err != nil {
			return err
		}

		schedule, err := schedules.CreateBucketIfNotExists([]byte(p.ChannelID()))
		if err != nil {
			return err
		}
		return schedule.Put(scheduleKey(p.StartTime(), p.ID()), id)
	})
	if err != nil {
		return program.Program{}, err
	}

	return p, nil
}

// FindByID retrieves a program by its id from BoltDB.
func (r *ProgramBoltDBRepository) FindByID(ctx context.Context, id string) (program.Program, error) {
	if err := ctx.Err(); err != nil {
		return program.Program{}, err
	}

	var p program.Program

	err := r.db.View(func(tx *bbolt.Tx) error {
		programs, _, err := programBuckets(tx)
		if err != nil {
			return err
		}

		found, err := loadProgram(programs, []byte(id))
		if err != nil {
			return err
		}
		p = found
		return nil
	})

	return p, err
}

// FindByChannelID walks the channel's schedule index in start order.
func (r *ProgramBoltDBRepository) FindByChannelID(ctx context.Context, channelID string) ([]program.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := []program.Program{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		return r.walkSchedule(tx, channelID, func(p program.Program) bool {
			result = append(result, p)
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FindOverlapping stops at the first program starting after end, since no
// later entry can intersect the interval.
func (r *ProgramBoltDBRepository) FindOverlapping(ctx context.Context, channelID string, start, end time.Time, excludeID string) (program.Program, error) {
	if err := ctx.Err(); err != nil {
		return program.Program{}, err
	}

	var (
		match program.Program
		found bool
	)

	err := r.db.View(func(tx *bbolt.Tx) error {
		return r.walkSchedule(tx, channelID, func(p program.Program) bool {
			if p.StartTime().After(end) {
				return false
			}
			if p.ID() != excludeID && p.Overlaps(start, end) {
				match, found = p, true
				return false
			}
			return true
		})
	})
	if err != nil {
		return program.Program{}, err
	}
	if !found {
		return program.Program{}, program.ErrProgramNotFound
	}

	return match, nil
}

// Delete removes a program and its schedule index entry.
func (r *ProgramBoltDBRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		programs, schedules, err := programBuckets(tx)
		if err != nil {
			return err
		}

		p, err := loadProgram(programs, []byte(id))
		if err != nil {
			return err
		}

		if schedule := schedules.Bucket([]byte(p.ChannelID())); schedule != nil {
			if err := schedule.Delete(scheduleKey(p.StartTime(), p.ID())); err != nil {
				return err
			}
		}

		return programs.Delete([]byte(id))
	})
}

// walkSchedule calls visit for every program of channelID in start order
// until visit returns false.
func (r *ProgramBoltDBRepository) walkSchedule(tx *bbolt.Tx, channelID string, visit func(program.Program) bool) error {
	programs, schedules, err := programBuckets(tx)
	if err != nil {
		return err
	}

	schedule := schedules.Bucket([]byte(channelID))
	if schedule == nil {
		return nil
	}

	c := schedule.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		p, err := loadProgram(programs, v)
		if err != nil {
			return err
		}
		if !visit(p) {
			return nil
		}
	}
	return nil
}

func loadProgram(programs *bbolt.Bucket, id []byte) (program.Program, error) {
	data := programs.Get(id)
	if data == nil {
		return program.Program{}, program.ErrProgramNotFound
	}

	var dto programDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return program.Program{}, err
	}
	return dtoToProgram(dto)
}

func programBuckets(tx *bbolt.Tx) (programs, schedules *bbolt.Bucket, err error) {
	programs = tx.Bucket([]byte(programsBucket))
	schedules = tx.Bucket([]byte(channelProgramsBucket))
	if programs == nil || schedules == nil {
		return nil, nil, errors.New("programs buckets not found")
	}
	return programs, schedules, nil
}

