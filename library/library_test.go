package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_AddAssignsID(t *testing.T) {
	s := NewStore()
	song := s.Add(Song{Title: "One"})
	if song.ID == "" {
		t.Fatal("Add left the id blank")
	}

	got, err := s.GetSong(song.ID)
	if err != nil {
		t.Fatalf("GetSong(%q) returned %v", song.ID, err)
	}
	if got.Title != "One" {
		t.Errorf("stored title = %q, want %q", got.Title, "One")
	}
}

func TestStore_AddKeepsExplicitID(t *testing.T) {
	s := NewStore()
	song := s.Add(Song{ID: "fixed", Title: "One"})
	if song.ID != "fixed" {
		t.Errorf("Add replaced id %q with %q", "fixed", song.ID)
	}

	// Re-adding the same id overwrites without duplicating.
	s.Add(Song{ID: "fixed", Title: "Two"})
	if s.Len() != 1 {
		t.Errorf("Len() = %d after overwrite, want 1", s.Len())
	}
	got, _ := s.GetSong("fixed")
	if got.Title != "Two" {
		t.Errorf("title = %q after overwrite, want %q", got.Title, "Two")
	}
}

func TestStore_GetSongMiss(t *testing.T) {
	s := NewStore()
	_, err := s.GetSong("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSong on missing id returned %v, want ErrNotFound", err)
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	a := s.Add(Song{Title: "A"})
	b := s.Add(Song{Title: "B"})

	s.Remove(a.ID)
	if _, err := s.GetSong(a.ID); !errors.Is(err, ErrNotFound) {
		t.Error("removed song still resolvable")
	}
	if all := s.All(); len(all) != 1 || all[0].ID != b.ID {
		t.Errorf("All() = %v after remove, want only %q", all, b.ID)
	}

	s.Remove("unknown") // no-op
	if s.Len() != 1 {
		t.Errorf("Len() = %d after removing unknown id, want 1", s.Len())
	}
}

func TestStore_AllPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	titles := []string{"C", "A", "B"}
	for _, title := range titles {
		s.Add(Song{Title: title})
	}
	for i, song := range s.All() {
		if song.Title != titles[i] {
			t.Errorf("All()[%d].Title = %q, want %q", i, song.Title, titles[i])
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := (Song{Artist: "Ana", Title: "Waves"}).DisplayName(); got != "Ana - Waves" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (Song{Title: "Waves"}).DisplayName(); got != "Waves" {
		t.Errorf("DisplayName() without artist = %q", got)
	}
}

func TestSongFromFilename(t *testing.T) {
	tests := []struct {
		path          string
		artist, title string
	}{
		{"/music/Ana - Waves.mp3", "Ana", "Waves"},
		{"/music/Ana - Waves - Live.flac", "Ana", "Waves - Live"},
		{"/music/untitled.ogg", "", "untitled"},
	}
	for _, tt := range tests {
		got := songFromFilename(tt.path)
		if got.Artist != tt.artist || got.Title != tt.title {
			t.Errorf("songFromFilename(%q) = %q / %q, want %q / %q",
				tt.path, got.Artist, got.Title, tt.artist, tt.title)
		}
		if got.FilePath != tt.path {
			t.Errorf("songFromFilename(%q) kept path %q", tt.path, got.FilePath)
		}
	}
}

func TestSongFromFile_FallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Ana - Waves.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	song := SongFromFile(path)
	if song.Artist != "Ana" || song.Title != "Waves" {
		t.Errorf("SongFromFile on untagged file = %q / %q, want filename parse", song.Artist, song.Title)
	}
}
