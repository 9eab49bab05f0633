package domain

import (
	"errors"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusWaiting, StatusPlaying, true},
		{StatusWaiting, StatusFinished, true},
		{StatusPlaying, StatusFinished, true},
		{StatusPlaying, StatusWaiting, false},
		{StatusFinished, StatusPlaying, false},
		{StatusFinished, StatusWaiting, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.allowed {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestModeByName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "classic"},
		{"classic", "classic"},
		{"CLASSIC", "classic"},
		{" blitz ", "blitz"},
		{"jumbo", "jumbo"},
		{"kids", "kids"},
	}
	for _, c := range cases {
		mode, err := ModeByName(c.in)
		if err != nil {
			t.Errorf("ModeByName(%q): %v", c.in, err)
			continue
		}
		if mode.Name != c.want {
			t.Errorf("ModeByName(%q) = %s, want %s", c.in, mode.Name, c.want)
		}
	}

	if _, err := ModeByName("speedrun"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("ModeByName(speedrun) = %v, want %v", err, ErrUnknownMode)
	}
}

func TestKidsModeIsSafe(t *testing.T) {
	mode, err := ModeByName("kids")
	if err != nil {
		t.Fatalf("ModeByName(kids): %v", err)
	}
	if !mode.SafeMode {
		t.Error("kids mode not flagged safe")
	}
	if mode.MaxRareLetters != 0 {
		t.Errorf("kids mode allows %d rare letters", mode.MaxRareLetters)
	}
}
