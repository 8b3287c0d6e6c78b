package program_test

import (
	"errors"
	"testing"
	"time"

	"github.com/alorle/epg-manager/internal/failure"
	"github.com/alorle/epg-manager/internal/program"
)

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func at(hour, min, sec int) time.Time {
	return time.Date(2020, time.July, 18, hour, min, sec, 0, time.UTC)
}

func fullPatch() program.Patch {
	return program.Patch{
		ChannelID:   strPtr("0d8d1a97-bec1-4d23-91b6-e164f6c635c6"),
		ImageURL:    strPtr("http://cycloid.com/channel1-image/"),
		Title:       strPtr("Best EPL Goals"),
		Description: strPtr("Review the amazing goals scored in the last English Premier League season!"),
		StartTime:   timePtr(at(11, 45, 47)),
		EndTime:     timePtr(at(12, 45, 47)),
	}
}

func businessMessage(t *testing.T, err error) string {
	t.Helper()
	var businessErr *failure.BusinessError
	if !errors.As(err, &businessErr) {
		t.Fatalf("expected BusinessError, got %v", err)
	}
	return businessErr.MessageKey
}

func TestNewProgram(t *testing.T) {
	t.Run("valid patch", func(t *testing.T) {
		p, err := program.NewProgram("p-1", fullPatch())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.ID() != "p-1" {
			t.Errorf("expected id 'p-1', got %q", p.ID())
		}
		if p.Title() != "Best EPL Goals" {
			t.Errorf("unexpected title %q", p.Title())
		}
		if !p.StartTime().Equal(at(11, 45, 47)) || !p.EndTime().Equal(at(12, 45, 47)) {
			t.Errorf("unexpected interval %v - %v", p.StartTime(), p.EndTime())
		}
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := program.NewProgram("", fullPatch())
		if !errors.Is(err, program.ErrEmptyID) {
			t.Errorf("expected ErrEmptyID, got %v", err)
		}
	})

	t.Run("required fields are checked before the time range", func(t *testing.T) {
		patch := fullPatch()
		patch.Title = nil
		patch.StartTime = timePtr(at(13, 0, 0))

		_, err := program.NewProgram("p-1", patch)
		if got := businessMessage(t, err); got != "Program needs to have a title!" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("reversed interval", func(t *testing.T) {
		patch := fullPatch()
		patch.StartTime = timePtr(at(13, 0, 0))

		_, err := program.NewProgram("p-1", patch)
		if got := businessMessage(t, err); got != "The start time must be before the end time!" {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestPatch_ValidateRequired(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*program.Patch)
		wantMsg string
	}{
		{"complete", func(*program.Patch) {}, ""},
		{"missing channel id", func(p *program.Patch) { p.ChannelID = nil }, "Program needs to have a channel id!"},
		{"blank channel id", func(p *program.Patch) { p.ChannelID = strPtr(" ") }, "Program needs to have a channel id!"},
		{"missing image url", func(p *program.Patch) { p.ImageURL = nil }, "Program needs to have a image URL!"},
		{"missing title", func(p *program.Patch) { p.Title = nil }, "Program needs to have a title!"},
		{"missing description", func(p *program.Patch) { p.Description = nil }, "Program needs to have a description!"},
		{"missing start time", func(p *program.Patch) { p.StartTime = nil }, "Program needs to have a start time!"},
		{"missing end time", func(p *program.Patch) { p.EndTime = nil }, "Program needs to have a end time!"},
		{"first missing field wins", func(p *program.Patch) { *p = program.Patch{} }, "Program needs to have a channel id!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := fullPatch()
			tt.mutate(&patch)

			err := patch.ValidateRequired()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if got := businessMessage(t, err); got != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, got)
			}
		})
	}
}

func TestValidateTimeRange(t *testing.T) {
	t.Run("start before end", func(t *testing.T) {
		if err := program.ValidateTimeRange(at(11, 0, 0), at(12, 0, 0)); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("start after end", func(t *testing.T) {
		err := program.ValidateTimeRange(at(12, 0, 0), at(11, 0, 0))
		var businessErr *failure.BusinessError
		if !errors.As(err, &businessErr) {
			t.Fatalf("expected BusinessError, got %v", err)
		}
		if businessErr.MessageKey != "The start time must be before the end time!" {
			t.Errorf("unexpected message %q", businessErr.MessageKey)
		}
		want := "Start time: 2020-07-18T12:00:00; End time: 2020-07-18T11:00:00"
		if len(businessErr.Arguments) != 1 || businessErr.Arguments[0] != want {
			t.Errorf("expected arguments [%q], got %v", want, businessErr.Arguments)
		}
	})

	t.Run("start equals end", func(t *testing.T) {
		err := program.ValidateTimeRange(at(12, 0, 0), at(12, 0, 0))
		if got := businessMessage(t, err); got != "The start time and the end time are the same!" {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestProgram_Overlaps(t *testing.T) {
	p := program.Reconstruct("p-1", "c-1", "img", "t", "d", at(11, 0, 0), at(12, 0, 0))

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", at(11, 0, 0), at(12, 0, 0), true},
		{"inside", at(11, 15, 0), at(11, 45, 0), true},
		{"enclosing", at(10, 0, 0), at(13, 0, 0), true},
		{"straddles start", at(10, 30, 0), at(11, 30, 0), true},
		{"straddles end", at(11, 30, 0), at(12, 30, 0), true},
		{"touches end", at(12, 0, 0), at(13, 0, 0), true},
		{"touches start", at(10, 0, 0), at(11, 0, 0), true},
		{"strictly after", at(12, 0, 1), at(13, 0, 0), false},
		{"strictly before", at(9, 0, 0), at(10, 59, 59), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgram_Unchanged(t *testing.T) {
	p, err := program.NewProgram("p-1", fullPatch())
	if err != nil {
		t.Fatalf("failed to create program: %v", err)
	}

	t.Run("identical patch", func(t *testing.T) {
		if !p.Unchanged(fullPatch()) {
			t.Error("expected identical patch to be unchanged")
		}
	})

	t.Run("partial patch is never unchanged", func(t *testing.T) {
		patch := fullPatch()
		patch.Title = nil
		if p.Unchanged(patch) {
			t.Error("expected partial patch to count as a change")
		}
	})

	t.Run("different value", func(t *testing.T) {
		patch := fullPatch()
		patch.EndTime = timePtr(at(12, 45, 48))
		if p.Unchanged(patch) {
			t.Error("expected different end time to count as a change")
		}
	})
}

func TestProgram_Merge(t *testing.T) {
	original, err := program.NewProgram("p-1", fullPatch())
	if err != nil {
		t.Fatalf("failed to create program: %v", err)
	}

	t.Run("only title", func(t *testing.T) {
		merged := original.Merge(program.Patch{Title: strPtr("Best Bundesliga Goals")})

		if merged.Title() != "Best Bundesliga Goals" {
			t.Errorf("expected new title, got %q", merged.Title())
		}
		if merged.ID() != original.ID() ||
			merged.ChannelID() != original.ChannelID() ||
			merged.ImageURL() != original.ImageURL() ||
			merged.Description() != original.Description() ||
			!merged.StartTime().Equal(original.StartTime()) ||
			!merged.EndTime().Equal(original.EndTime()) {
			t.Error("expected every other field to be preserved")
		}
		if original.Title() != "Best EPL Goals" {
			t.Error("expected receiver to be left untouched")
		}
	})

	t.Run("blank strings are absent", func(t *testing.T) {
		merged := original.Merge(program.Patch{Description: strPtr("  ")})
		if merged.Description() != original.Description() {
			t.Errorf("expected description to be kept, got %q", merged.Description())
		}
	})

	t.Run("all fields", func(t *testing.T) {
		merged := original.Merge(program.Patch{
			ChannelID:   strPtr("c-2"),
			ImageURL:    strPtr("http://cycloid.com/channel2-image/"),
			Title:       strPtr("Best Bundesliga Goals"),
			Description: strPtr("Review the amazing goals scored in the last Bundesliga season!"),
			StartTime:   timePtr(at(14, 0, 0)),
			EndTime:     timePtr(at(15, 0, 0)),
		})

		if merged.ChannelID() != "c-2" || merged.ImageURL() != "http://cycloid.com/channel2-image/" {
			t.Errorf("unexpected merge result %+v", merged)
		}
		if !merged.StartTime().Equal(at(14, 0, 0)) || !merged.EndTime().Equal(at(15, 0, 0)) {
			t.Errorf("unexpected interval %v - %v", merged.StartTime(), merged.EndTime())
		}
	})
}

func TestScheduleConflict(t *testing.T) {
	existing := program.Reconstruct("p-1", "c-1", "img", "t", "d", at(11, 45, 47), at(12, 45, 47))

	var businessErr *failure.BusinessError
	if !errors.As(program.ScheduleConflict(existing), &businessErr) {
		t.Fatal("expected BusinessError")
	}
	wantMsg := "There is already a program starting at 2020-07-18T11:45:47 and ending at 2020-07-18T12:45:47"
	if businessErr.MessageKey != wantMsg {
		t.Errorf("expected %q, got %q", wantMsg, businessErr.MessageKey)
	}
	wantArg := "Start time: 2020-07-18T11:45:47; End time: 2020-07-18T12:45:47"
	if len(businessErr.Arguments) != 1 || businessErr.Arguments[0] != wantArg {
		t.Errorf("expected [%q], got %v", wantArg, businessErr.Arguments)
	}
}

func TestNotFoundMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"lookup", program.NoProgramFound("42"), "No program found for this id: 42"},
		{"update", program.MissingUpdateTarget("42"), "Program with id 42 not found!"},
		{"channel", program.UnknownChannel("c-9"), "Channel with id c-9 not found!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var notFound *failure.ResourceNotFoundError
			if !errors.As(tt.err, &notFound) {
				t.Fatalf("expected ResourceNotFoundError, got %v", tt.err)
			}
			if notFound.MessageKey != tt.want {
				t.Errorf("expected %q, got %q", tt.want, notFound.MessageKey)
			}
			if len(notFound.Arguments) != 1 {
				t.Errorf("expected one argument, got %v", notFound.Arguments)
			}
		})
	}
}
