package library

import (
	"os"

	"github.com/dhowden/tag"
)

// SongFromFile builds a Song from an audio file on disk, reading embedded
// tags when present and falling back to filename parsing. The file itself
// is not decoded, so Duration and LUFS stay unset.
func SongFromFile(path string) Song {
	song := songFromFilename(path)

	f, err := os.Open(path)
	if err != nil {
		return song
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return song
	}

	if t := m.Title(); t != "" {
		song.Title = t
	}
	if a := m.Artist(); a != "" {
		song.Artist = a
	}
	if al := m.Album(); al != "" {
		song.Album = al
	}
	if n, _ := m.Track(); n > 0 {
		song.TrackNumber = &n
	}
	return song
}
