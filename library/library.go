// Package library defines the song catalog consumed by the playback engine.
// The real catalog (database, scanner, watcher) lives outside this module;
// the engine only depends on the Catalog interface. Store is a reference
// in-memory implementation used by the demo front-end and by tests.
package library

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a Catalog when a song id has no entry,
// typically because the file was deleted since it was queued.
var ErrNotFound = errors.New("library: song not found")

// Song is a single catalog entry. The engine keeps only a copy of the
// fields it needs for the current load.
type Song struct {
	ID          string
	Title       string
	Artist      string
	Album       string
	FilePath    string
	Duration    time.Duration
	TrackNumber *int
	// LUFS is the measured integrated loudness, when known. Nil disables
	// loudness normalization for this song.
	LUFS *float64
}

// DisplayName returns "Artist - Title", or just the title when the artist
// is unknown.
func (s Song) DisplayName() string {
	if s.Artist != "" {
		return s.Artist + " - " + s.Title
	}
	return s.Title
}

// Catalog is the lookup surface the engine needs. A miss is non-fatal and
// must be reported as ErrNotFound.
type Catalog interface {
	GetSong(id string) (Song, error)
}

// Store is an in-memory Catalog keyed by song id, preserving insertion order.
type Store struct {
	mu    sync.RWMutex
	songs map[string]Song
	order []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{songs: make(map[string]Song)}
}

// Add inserts a song, assigning a fresh id if it has none, and returns the
// stored copy.
func (s *Store) Add(song Song) Song {
	if song.ID == "" {
		song.ID = uuid.NewString()
	}
	s.mu.Lock()
	if _, ok := s.songs[song.ID]; !ok {
		s.order = append(s.order, song.ID)
	}
	s.songs[song.ID] = song
	s.mu.Unlock()
	return song
}

// GetSong implements Catalog.
func (s *Store) GetSong(id string) (Song, error) {
	s.mu.RLock()
	song, ok := s.songs[id]
	s.mu.RUnlock()
	if !ok {
		return Song{}, ErrNotFound
	}
	return song, nil
}

// Remove deletes a song from the store. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	if _, ok := s.songs[id]; ok {
		delete(s.songs, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
}

// All returns every song in insertion order.
func (s *Store) All() []Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Song, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.songs[id])
	}
	return out
}

// Len returns the number of songs in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.songs)
}

// songFromFilename builds a Song by parsing an "Artist - Title" filename,
// falling back to the bare filename as title.
func songFromFilename(path string) Song {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.SplitN(name, " - ", 2)
	if len(parts) == 2 {
		return Song{
			FilePath: path,
			Artist:   strings.TrimSpace(parts[0]),
			Title:    strings.TrimSpace(parts[1]),
		}
	}
	return Song{FilePath: path, Title: name}
}
