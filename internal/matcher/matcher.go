// Package matcher scores arbitrarily named local files against catalog tracks.
package matcher

import (
	"strings"

	"spotsync/internal/catalog"
	"spotsync/internal/library"
	"spotsync/internal/textnorm"
)

// Weights of the substring signals. The combined title+artist key is the
// strongest because it separates same-titled songs by different artists.
const (
	TitleWeight  = 2
	ArtistWeight = 2
	KeyWeight    = 3
)

// Score rates how well a file stem names the track. Zero means no signal.
func Score(t catalog.Track, stem string) int {
	return scoreNormalized(newSignals(t), textnorm.Normalize(stem))
}

type signals struct {
	title, artist, key string
}

func newSignals(t catalog.Track) signals {
	return signals{
		title:  textnorm.Normalize(t.Title()),
		artist: textnorm.Normalize(t.Artist()),
		key:    textnorm.Normalize(t.NormalizedKey()),
	}
}

func scoreNormalized(s signals, base string) int {
	score := 0
	if s.title != "" && strings.Contains(base, s.title) {
		score += TitleWeight
	}
	if s.artist != "" && strings.Contains(base, s.artist) {
		score += ArtistWeight
	}
	if s.key != "" && strings.Contains(base, s.key) {
		score += KeyWeight
	}
	return score
}

// BestMatch returns the index of the stem with the strictly highest positive
// score, or -1 when every stem scores zero. Ties go to the earliest stem.
func BestMatch(t catalog.Track, stems []string) int {
	s := newSignals(t)
	best, bestScore := -1, 0
	for i, stem := range stems {
		if score := scoreNormalized(s, textnorm.Normalize(stem)); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// Pool is the set of stray files still available for matching. A file
// handed out by Take is never offered again.
type Pool struct {
	files    []library.AudioFile
	consumed map[string]bool
}

// NewPool creates a pool over files, preserving their order for tie-breaks.
func NewPool(files []library.AudioFile) *Pool {
	return &Pool{
		files:    append([]library.AudioFile(nil), files...),
		consumed: make(map[string]bool, len(files)),
	}
}

// Take removes and returns the best remaining match for t.
func (p *Pool) Take(t catalog.Track) (library.AudioFile, bool) {
	remaining := p.Remaining()
	stems := make([]string, len(remaining))
	for i, f := range remaining {
		stems[i] = f.Stem
	}

	idx := BestMatch(t, stems)
	if idx < 0 {
		return library.AudioFile{}, false
	}
	f := remaining[idx]
	p.consumed[f.Path] = true
	return f, true
}

// Remaining returns the files not yet taken, in original order.
func (p *Pool) Remaining() []library.AudioFile {
	out := make([]library.AudioFile, 0, len(p.files)-len(p.consumed))
	for _, f := range p.files {
		if !p.consumed[f.Path] {
			out = append(out, f)
		}
	}
	return out
}

// Consumed reports whether the file at path has been taken.
func (p *Pool) Consumed(path string) bool {
	return p.consumed[path]
}

// Len is the number of files still available.
func (p *Pool) Len() int {
	return len(p.files) - len(p.consumed)
}
