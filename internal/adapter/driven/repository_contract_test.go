package driven

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alorle/epg-manager/internal/channel"
	"github.com/alorle/epg-manager/internal/program"
	port "github.com/alorle/epg-manager/internal/port/driven"
)

// runChannelRepositoryContract exercises behavior every ChannelRepository
// implementation must share. newRepo must return an empty repository.
func runChannelRepositoryContract(t *testing.T, newRepo func(t *testing.T) port.ChannelRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("saves and finds a channel by every key", func(t *testing.T) {
		repo := newRepo(t)
		ch := channel.Reconstruct("ch-1", "News 24", 3, "news")

		saved, err := repo.Save(ctx, ch)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if saved.ID() != "ch-1" {
			t.Errorf("saved ID = %q, want %q", saved.ID(), "ch-1")
		}

		lookups := map[string]func() (channel.Channel, error){
			"id":       func() (channel.Channel, error) { return repo.FindByID(ctx, "ch-1") },
			"name":     func() (channel.Channel, error) { return repo.FindByName(ctx, "News 24") },
			"position": func() (channel.Channel, error) { return repo.FindByPosition(ctx, 3) },
		}
		for key, lookup := range lookups {
			found, err := lookup()
			if err != nil {
				t.Fatalf("find by %s error = %v", key, err)
			}
			if found.Name() != "News 24" || found.Position() != 3 || found.Category() != "news" {
				t.Errorf("find by %s = %+v", key, found)
			}
		}
	})

	t.Run("returns not found for unknown keys", func(t *testing.T) {
		repo := newRepo(t)

		if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, channel.ErrChannelNotFound) {
			t.Errorf("FindByID() error = %v, want ErrChannelNotFound", err)
		}
		if _, err := repo.FindByName(ctx, "missing"); !errors.Is(err, channel.ErrChannelNotFound) {
			t.Errorf("FindByName() error = %v, want ErrChannelNotFound", err)
		}
		if _, err := repo.FindByPosition(ctx, 99); !errors.Is(err, channel.ErrChannelNotFound) {
			t.Errorf("FindByPosition() error = %v, want ErrChannelNotFound", err)
		}
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Save(ctx, channel.Reconstruct("ch-1", "Sports", 1, "sports")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		_, err := repo.Save(ctx, channel.Reconstruct("ch-2", "Sports", 2, "sports"))
		if !errors.Is(err, channel.ErrDuplicateName) {
			t.Errorf("Save() error = %v, want ErrDuplicateName", err)
		}
	})

	t.Run("rejects duplicate position", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Save(ctx, channel.Reconstruct("ch-1", "Sports", 1, "sports")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		_, err := repo.Save(ctx, channel.Reconstruct("ch-2", "Movies", 1, "movies"))
		if !errors.Is(err, channel.ErrDuplicatePosition) {
			t.Errorf("Save() error = %v, want ErrDuplicatePosition", err)
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("FindAll() returned %d channels, want 1", len(all))
		}
	})

	t.Run("lists an empty repository as an empty slice", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if all == nil || len(all) != 0 {
			t.Errorf("FindAll() = %v, want empty non-nil slice", all)
		}
	})

	t.Run("lists every channel", func(t *testing.T) {
		repo := newRepo(t)
		for _, ch := range []channel.Channel{
			channel.Reconstruct("a", "One", 1, "general"),
			channel.Reconstruct("b", "Two", 2, "general"),
			channel.Reconstruct("c", "Three", 3, "general"),
		} {
			if _, err := repo.Save(ctx, ch); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		all, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll() error = %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("FindAll() returned %d channels, want 3", len(all))
		}
	})

	t.Run("ping succeeds", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func testProgram(id, channelID string, start, end time.Time) program.Program {
	return program.Reconstruct(id, channelID, "http://img/"+id+".png", "Title "+id, "Description "+id, start, end)
}

// runProgramRepositoryContract exercises behavior every ProgramRepository
// implementation must share. seedChannels is called with the channel ids the
// subtest uses, for stores that enforce referential integrity.
func runProgramRepositoryContract(t *testing.T, newRepo func(t *testing.T, channelIDs ...string) port.ProgramRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("saves and finds a program by id", func(t *testing.T) {
		repo := newRepo(t, "ch-1")
		p := testProgram("p-1", "ch-1", at(10, 0), at(11, 0))

		if _, err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, err := repo.FindByID(ctx, "p-1")
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Title() != "Title p-1" || found.ChannelID() != "ch-1" {
			t.Errorf("FindByID() = %+v", found)
		}
		if !found.StartTime().Equal(at(10, 0)) || !found.EndTime().Equal(at(11, 0)) {
			t.Errorf("times = %v..%v, want %v..%v", found.StartTime(), found.EndTime(), at(10, 0), at(11, 0))
		}
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, program.ErrProgramNotFound) {
			t.Errorf("FindByID() error = %v, want ErrProgramNotFound", err)
		}
	})

	t.Run("lists a channel schedule in start order", func(t *testing.T) {
		repo := newRepo(t, "ch-1", "ch-2")
		for _, p := range []program.Program{
			testProgram("late", "ch-1", at(20, 0), at(21, 0)),
			testProgram("early", "ch-1", at(8, 0), at(9, 0)),
			testProgram("other", "ch-2", at(8, 0), at(9, 0)),
			testProgram("middle", "ch-1", at(12, 0), at(13, 0)),
		} {
			if _, err := repo.Save(ctx, p); err != nil {
				t.Fatalf("Save(%s) error = %v", p.ID(), err)
			}
		}

		programs, err := repo.FindByChannelID(ctx, "ch-1")
		if err != nil {
			t.Fatalf("FindByChannelID() error = %v", err)
		}

		want := []string{"early", "middle", "late"}
		if len(programs) != len(want) {
			t.Fatalf("FindByChannelID() returned %d programs, want %d", len(programs), len(want))
		}
		for i, id := range want {
			if programs[i].ID() != id {
				t.Errorf("programs[%d] = %s, want %s", i, programs[i].ID(), id)
			}
		}
	})

	t.Run("lists an unknown channel as an empty slice", func(t *testing.T) {
		repo := newRepo(t)

		programs, err := repo.FindByChannelID(ctx, "nobody")
		if err != nil {
			t.Fatalf("FindByChannelID() error = %v", err)
		}
		if programs == nil || len(programs) != 0 {
			t.Errorf("FindByChannelID() = %v, want empty non-nil slice", programs)
		}
	})

	t.Run("moving a program updates the schedule", func(t *testing.T) {
		repo := newRepo(t, "ch-1", "ch-2")
		if _, err := repo.Save(ctx, testProgram("p-1", "ch-1", at(10, 0), at(11, 0))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if _, err := repo.Save(ctx, testProgram("p-1", "ch-2", at(14, 0), at(15, 0))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		old, err := repo.FindByChannelID(ctx, "ch-1")
		if err != nil {
			t.Fatalf("FindByChannelID() error = %v", err)
		}
		if len(old) != 0 {
			t.Errorf("old channel still lists %d programs", len(old))
		}

		moved, err := repo.FindByChannelID(ctx, "ch-2")
		if err != nil {
			t.Fatalf("FindByChannelID() error = %v", err)
		}
		if len(moved) != 1 || !moved[0].StartTime().Equal(at(14, 0)) {
			t.Errorf("new channel lists %+v", moved)
		}
	})

	t.Run("finds the earliest overlapping program", func(t *testing.T) {
		repo := newRepo(t, "ch-1")
		for _, p := range []program.Program{
			testProgram("p-10", "ch-1", at(10, 0), at(11, 0)),
			testProgram("p-12", "ch-1", at(12, 0), at(13, 0)),
		} {
			if _, err := repo.Save(ctx, p); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		tests := []struct {
			name       string
			start, end time.Time
			exclude    string
			wantID     string
		}{
			{name: "contained", start: at(10, 15), end: at(10, 45), wantID: "p-10"},
			{name: "spans both", start: at(9, 0), end: at(14, 0), wantID: "p-10"},
			{name: "touching end is inclusive", start: at(11, 0), end: at(11, 30), wantID: "p-10"},
			{name: "touching start is inclusive", start: at(11, 30), end: at(12, 0), wantID: "p-12"},
			{name: "gap", start: at(11, 1), end: at(11, 59)},
			{name: "excluded self", start: at(10, 0), end: at(11, 0), exclude: "p-10"},
			{name: "excluded self still sees neighbour", start: at(10, 0), end: at(12, 30), exclude: "p-10", wantID: "p-12"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				found, err := repo.FindOverlapping(ctx, "ch-1", tt.start, tt.end, tt.exclude)
				if tt.wantID == "" {
					if !errors.Is(err, program.ErrProgramNotFound) {
						t.Errorf("FindOverlapping() = %v, %v; want ErrProgramNotFound", found.ID(), err)
					}
					return
				}
				if err != nil {
					t.Fatalf("FindOverlapping() error = %v", err)
				}
				if found.ID() != tt.wantID {
					t.Errorf("FindOverlapping() = %s, want %s", found.ID(), tt.wantID)
				}
			})
		}
	})

	t.Run("orders and overlaps programs far from the present", func(t *testing.T) {
		repo := newRepo(t, "ch-1")
		farPast := time.Date(1500, time.July, 18, 12, 0, 0, 0, time.UTC)
		farFuture := time.Date(2300, time.July, 18, 12, 0, 0, 0, time.UTC)
		for _, p := range []program.Program{
			testProgram("future", "ch-1", farFuture, farFuture.Add(time.Hour)),
			testProgram("present", "ch-1", at(12, 0), at(13, 0)),
			testProgram("past", "ch-1", farPast, farPast.Add(time.Hour)),
		} {
			if _, err := repo.Save(ctx, p); err != nil {
				t.Fatalf("Save(%s) error = %v", p.ID(), err)
			}
		}

		schedule, err := repo.FindByChannelID(ctx, "ch-1")
		if err != nil {
			t.Fatalf("FindByChannelID() error = %v", err)
		}
		var order []string
		for _, p := range schedule {
			order = append(order, p.ID())
		}
		if len(order) != 3 || order[0] != "past" || order[1] != "present" || order[2] != "future" {
			t.Errorf("FindByChannelID() order = %v, want [past present future]", order)
		}

		for _, tc := range []struct {
			start, end time.Time
			wantID     string
		}{
			{at(12, 0), at(12, 30), "present"},
			{farFuture.Add(30 * time.Minute), farFuture.Add(2 * time.Hour), "future"},
			{farPast.Add(-time.Hour), farPast, "past"},
		} {
			found, err := repo.FindOverlapping(ctx, "ch-1", tc.start, tc.end, "")
			if err != nil {
				t.Fatalf("FindOverlapping(%v) error = %v, want %s", tc.start, err, tc.wantID)
			}
			if found.ID() != tc.wantID {
				t.Errorf("FindOverlapping(%v) = %s, want %s", tc.start, found.ID(), tc.wantID)
			}
		}
	})

	t.Run("other channels never overlap", func(t *testing.T) {
		repo := newRepo(t, "ch-1", "ch-2")
		if _, err := repo.Save(ctx, testProgram("p-1", "ch-1", at(10, 0), at(11, 0))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		_, err := repo.FindOverlapping(ctx, "ch-2", at(10, 0), at(11, 0), "")
		if !errors.Is(err, program.ErrProgramNotFound) {
			t.Errorf("FindOverlapping() error = %v, want ErrProgramNotFound", err)
		}
	})

	t.Run("deletes a program", func(t *testing.T) {
		repo := newRepo(t, "ch-1")
		if _, err := repo.Save(ctx, testProgram("p-1", "ch-1", at(10, 0), at(11, 0))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if err := repo.Delete(ctx, "p-1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := repo.FindByID(ctx, "p-1"); !errors.Is(err, program.ErrProgramNotFound) {
			t.Errorf("FindByID() after delete error = %v, want ErrProgramNotFound", err)
		}

		schedule, err := repo.FindByChannelID(ctx, "ch-1")
		if err != nil {
			t.Fatalf("FindByChannelID() error = %v", err)
		}
		if len(schedule) != 0 {
			t.Errorf("schedule still lists %d programs", len(schedule))
		}
	})

	t.Run("deleting an unknown program returns not found", func(t *testing.T) {
		repo := newRepo(t)
		if err := repo.Delete(ctx, "missing"); !errors.Is(err, program.ErrProgramNotFound) {
			t.Errorf("Delete() error = %v, want ErrProgramNotFound", err)
		}
	})
}
