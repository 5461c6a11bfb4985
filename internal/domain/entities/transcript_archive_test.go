package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCountWords(t *testing.T) {
	cases := []struct {
		name       string
		transcript string
		want       int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \t\n  ", 0},
		{"single word", "hello", 1},
		{"multiple spaces collapse", "alpha   beta\t\tgamma", 3},
		{"newlines count as separators", "one\ntwo\nthree four", 4},
		{"standup transcript", "Alice will fix the bug. Bob is blocked on IRB approval.", 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountWords(tc.transcript); got != tc.want {
				t.Fatalf("CountWords(%q) = %d, want %d", tc.transcript, got, tc.want)
			}
		})
	}
}

func TestNewTranscriptArchive_Defaults(t *testing.T) {
	standupID := uuid.New()
	before := time.Now()
	archive := NewTranscriptArchive(standupID, "alpha beta gamma", 0)
	after := time.Now()

	if archive.StandupID != standupID {
		t.Fatalf("standup id = %s, want %s", archive.StandupID, standupID)
	}
	if archive.WordCount != 3 {
		t.Fatalf("word count = %d, want 3", archive.WordCount)
	}
	if archive.Language != "en" {
		t.Fatalf("language = %q, want en", archive.Language)
	}

	minExpiry := before.AddDate(0, 0, DefaultRetentionDays)
	maxExpiry := after.AddDate(0, 0, DefaultRetentionDays)
	if archive.ExpiresAt.Before(minExpiry) || archive.ExpiresAt.After(maxExpiry) {
		t.Fatalf("expires at %s, want within [%s, %s]", archive.ExpiresAt, minExpiry, maxExpiry)
	}
}

func TestExtendRetention_CompoundsFromCurrentExpiry(t *testing.T) {
	archive := NewTranscriptArchive(uuid.New(), "word", 30)
	first := archive.ExpiresAt

	archive.ExtendRetention(10)
	if got, want := archive.ExpiresAt, first.AddDate(0, 0, 10); !got.Equal(want) {
		t.Fatalf("after first extension expires at %s, want %s", got, want)
	}

	archive.ExtendRetention(5)
	if got, want := archive.ExpiresAt, first.AddDate(0, 0, 15); !got.Equal(want) {
		t.Fatalf("after second extension expires at %s, want %s", got, want)
	}

	// Extensions only ever move the deadline forward.
	if !archive.ExpiresAt.After(first) {
		t.Fatal("expiry moved backwards")
	}
}

func TestIsExpired(t *testing.T) {
	archive := NewTranscriptArchive(uuid.New(), "word", 30)

	if archive.IsExpired(archive.ExpiresAt.Add(-time.Second)) {
		t.Fatal("archive reported expired before deadline")
	}
	if !archive.IsExpired(archive.ExpiresAt) {
		t.Fatal("archive not expired exactly at deadline")
	}
	if !archive.IsExpired(archive.ExpiresAt.Add(time.Second)) {
		t.Fatal("archive not expired after deadline")
	}
}
