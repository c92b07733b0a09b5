package model

import (
	"testing"
	"time"
)

func TestNextAfter(t *testing.T) {
	// Monday at 00:30.
	schedule := ResetSchedule{DayOfWeek: 1, MinuteOfDay: 30}

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "midweek jumps to next monday",
			from: time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.January, 8, 0, 30, 0, 0, time.UTC),
		},
		{
			name: "monday before the minute stays on the same day",
			from: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.January, 1, 0, 30, 0, 0, time.UTC),
		},
		{
			name: "exactly on the boundary goes to next week",
			from: time.Date(2024, time.January, 1, 0, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.January, 8, 0, 30, 0, 0, time.UTC),
		},
		{
			name: "monday after the minute goes to next week",
			from: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.January, 8, 0, 30, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.NextAfter(tt.from)
			if !got.Equal(tt.want) {
				t.Errorf("NextAfter(%v) = %v, want %v", tt.from, got, tt.want)
			}
		})
	}
}

func TestNextAfterLateMinute(t *testing.T) {
	// Friday at 23:59.
	schedule := ResetSchedule{DayOfWeek: 5, MinuteOfDay: 1439}
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2024, time.January, 5, 23, 59, 0, 0, time.UTC)
	if got := schedule.NextAfter(from); !got.Equal(want) {
		t.Errorf("NextAfter = %v, want %v", got, want)
	}
}

func TestLastCrossed(t *testing.T) {
	// Monday at midnight.
	schedule := ResetSchedule{DayOfWeek: 1, MinuteOfDay: 0}
	lastReset := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	t.Run("not yet crossed", func(t *testing.T) {
		now := time.Date(2024, time.January, 7, 23, 59, 0, 0, time.UTC)
		if _, crossed := schedule.LastCrossed(lastReset, now); crossed {
			t.Error("reported a crossed boundary before the next monday")
		}
	})

	t.Run("single boundary", func(t *testing.T) {
		now := time.Date(2024, time.January, 8, 0, 1, 0, 0, time.UTC)
		boundary, crossed := schedule.LastCrossed(lastReset, now)
		if !crossed {
			t.Fatal("boundary not reported as crossed")
		}
		want := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
		if !boundary.Equal(want) {
			t.Errorf("boundary = %v, want %v", boundary, want)
		}
	})

	t.Run("missed weeks collapse to the latest boundary", func(t *testing.T) {
		now := time.Date(2024, time.January, 25, 10, 0, 0, 0, time.UTC)
		boundary, crossed := schedule.LastCrossed(lastReset, now)
		if !crossed {
			t.Fatal("boundary not reported as crossed")
		}
		want := time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC)
		if !boundary.Equal(want) {
			t.Errorf("boundary = %v, want %v", boundary, want)
		}
	})

	t.Run("now exactly on the boundary counts", func(t *testing.T) {
		now := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
		boundary, crossed := schedule.LastCrossed(lastReset, now)
		if !crossed {
			t.Fatal("boundary not reported as crossed")
		}
		if !boundary.Equal(now) {
			t.Errorf("boundary = %v, want %v", boundary, now)
		}
	})
}

func TestResetScheduleValidate(t *testing.T) {
	valid := []ResetSchedule{
		{DayOfWeek: 0, MinuteOfDay: 0},
		{DayOfWeek: 6, MinuteOfDay: 1439},
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v, want nil", s, err)
		}
	}
	invalid := []ResetSchedule{
		{DayOfWeek: -1, MinuteOfDay: 0},
		{DayOfWeek: 7, MinuteOfDay: 0},
		{DayOfWeek: 0, MinuteOfDay: -1},
		{DayOfWeek: 0, MinuteOfDay: 1440},
	}
	for _, s := range invalid {
		if err := s.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", s)
		}
	}
}

func TestKindPairing(t *testing.T) {
	for kind, info := range kindTable {
		if info.forward != "" && info.reversal != "" {
			t.Errorf("kind %s is both forward and reversal", kind)
		}
		if info.reversal != "" {
			if got := info.reversal.ForwardKind(); got != kind {
				t.Errorf("%s.ForwardKind() = %s, want %s", info.reversal, got, kind)
			}
		}
	}

	if _, err := ParseKind("Suspend"); err != nil {
		t.Errorf("ParseKind(Suspend) returned error: %v", err)
	}
	if _, err := ParseKind("Banhammer"); err == nil {
		t.Error("ParseKind accepted an unknown kind")
	}
	if KindWarn.Exclusive() {
		t.Error("Warn should not be exclusive")
	}
	if !KindSuspend.Exclusive() {
		t.Error("Suspend should be exclusive")
	}
}
