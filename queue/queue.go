// Package queue manages the ordered list of queued songs and decides what
// plays next. It holds song ids only; song metadata stays in the library.
package queue

import (
	"math/rand"
	"sync"
)

// RepeatMode controls what happens at the queue boundaries.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (r RepeatMode) String() string {
	switch r {
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Off"
	}
}

// Queue is an ordered sequence of song ids with a current cursor, a shuffle
// flag and a repeat mode. Shuffle is an order permutation over the items;
// the cursor always moves through that order, so repeat-mode boundary rules
// are unaffected by shuffling.
//
// A single Queue instance lives for the whole process and is shared between
// the engine's goroutines and the UI, hence the mutex.
type Queue struct {
	mu      sync.Mutex
	items   []string
	order   []int // permutation of item indices, shuffled or sequential
	cursor  int   // position in order; -1 when nothing is current
	shuffle bool
	repeat  RepeatMode
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{cursor: -1}
}

// Add appends a song. If the queue was empty, it becomes the current song.
func (q *Queue) Add(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.appendLocked(id)
}

// AddMany appends songs in the given order.
func (q *Queue) AddMany(ids []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		q.appendLocked(id)
	}
}

func (q *Queue) appendLocked(id string) {
	q.items = append(q.items, id)
	q.order = append(q.order, len(q.items)-1)
	if q.cursor < 0 {
		q.cursor = 0
	}
}

// ClearAndQueueSongs replaces the whole queue contents, used when the user
// starts a new album or playlist. The first song becomes current.
func (q *Queue) ClearAndQueueSongs(ids []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]string(nil), ids...)
	q.order = sequential(len(q.items))
	if len(q.items) == 0 {
		q.cursor = -1
		return
	}
	q.cursor = 0
	if q.shuffle {
		q.reshuffleLocked()
	}
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.order = nil
	q.cursor = -1
}

// AdvanceNextID moves the cursor forward per the repeat mode and returns the
// resulting song id. Under RepeatOff at the last song it returns false and
// leaves the cursor untouched.
func (q *Queue) AdvanceNextID() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	switch q.repeat {
	case RepeatOne:
		return q.currentLocked()
	case RepeatAll:
		if q.cursor < 0 {
			q.cursor = 0
		} else {
			q.cursor = (q.cursor + 1) % len(q.order)
		}
	default: // RepeatOff
		switch {
		case q.cursor < 0:
			q.cursor = 0
		case q.cursor+1 < len(q.order):
			q.cursor++
		default:
			return "", false
		}
	}
	return q.currentLocked()
}

// AdvancePreviousID is the backward counterpart of AdvanceNextID.
func (q *Queue) AdvancePreviousID() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	switch q.repeat {
	case RepeatOne:
		return q.currentLocked()
	case RepeatAll:
		if q.cursor <= 0 {
			q.cursor = len(q.order) - 1
		} else {
			q.cursor--
		}
	default: // RepeatOff
		switch {
		case q.cursor < 0:
			q.cursor = 0
		case q.cursor > 0:
			q.cursor--
		default:
			return "", false
		}
	}
	return q.currentLocked()
}

// HasNext reports whether AdvanceNextID would return a song, without
// mutating any state.
func (q *Queue) HasNext() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return false
	}
	if q.repeat != RepeatOff {
		return true
	}
	if q.cursor < 0 {
		return true
	}
	return q.cursor+1 < len(q.order)
}

// HasPrevious reports whether AdvancePreviousID would return a song.
func (q *Queue) HasPrevious() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return false
	}
	if q.repeat != RepeatOff {
		return true
	}
	return q.cursor > 0
}

// CurrentID returns the current song id, if any.
func (q *Queue) CurrentID() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.currentLocked()
}

func (q *Queue) currentLocked() (string, bool) {
	if q.cursor < 0 || q.cursor >= len(q.order) {
		return "", false
	}
	return q.items[q.order[q.cursor]], true
}

// CurrentIndex returns the play-order position of the current song, or -1.
func (q *Queue) CurrentIndex() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor
}

// SetCurrentIndex jumps the cursor to the given play-order position and
// returns the song id there.
func (q *Queue) SetCurrentIndex(i int) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.order) {
		return "", false
	}
	q.cursor = i
	return q.currentLocked()
}

// Remove deletes the song at the given play-order position. Removing the
// current song clamps the cursor to the last valid position, or clears it
// when the queue empties; removing an earlier song shifts the cursor down
// so it stays on the same logical song.
func (q *Queue) Remove(i int) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.order) {
		return "", false
	}
	itemIdx := q.order[i]
	id := q.items[itemIdx]

	q.items = append(q.items[:itemIdx], q.items[itemIdx+1:]...)
	q.order = append(q.order[:i], q.order[i+1:]...)
	for j, idx := range q.order {
		if idx > itemIdx {
			q.order[j] = idx - 1
		}
	}

	switch {
	case len(q.order) == 0:
		q.cursor = -1
	case i < q.cursor:
		q.cursor--
	case q.cursor >= len(q.order):
		q.cursor = len(q.order) - 1
	}
	return id, true
}

// Items returns the queued song ids in play order.
func (q *Queue) Items() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.order))
	for i, idx := range q.order {
		out[i] = q.items[idx]
	}
	return out
}

// Len returns the number of queued songs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue has no songs.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// SetShuffle enables or disables shuffle. Enabling reshuffles the order with
// the current song pinned first; disabling restores sequential order with
// the cursor following the current song.
func (q *Queue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shuffle == on {
		return
	}
	q.shuffle = on
	if len(q.items) == 0 {
		return
	}
	if on {
		q.reshuffleLocked()
		return
	}
	cur := -1
	if q.cursor >= 0 {
		cur = q.order[q.cursor]
	}
	q.order = sequential(len(q.items))
	q.cursor = cur
}

// ToggleShuffle flips the shuffle flag.
func (q *Queue) ToggleShuffle() {
	q.SetShuffle(!q.Shuffled())
}

// Shuffled reports whether shuffle is enabled.
func (q *Queue) Shuffled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffle
}

// reshuffleLocked builds a fresh Fisher-Yates permutation with the current
// song kept at the front so playback is not interrupted.
func (q *Queue) reshuffleLocked() {
	cur := -1
	if q.cursor >= 0 {
		cur = q.order[q.cursor]
	}
	others := make([]int, 0, len(q.items))
	for i := range q.items {
		if i != cur {
			others = append(others, i)
		}
	}
	for i := len(others) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		others[i], others[j] = others[j], others[i]
	}
	q.order = q.order[:0]
	if cur >= 0 {
		q.order = append(q.order, cur)
		q.cursor = 0
	}
	q.order = append(q.order, others...)
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(mode RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = mode
}

// CycleRepeat advances Off -> All -> One -> Off.
func (q *Queue) CycleRepeat() {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch q.repeat {
	case RepeatOff:
		q.repeat = RepeatAll
	case RepeatAll:
		q.repeat = RepeatOne
	default:
		q.repeat = RepeatOff
	}
}

// Repeat returns the current repeat mode.
func (q *Queue) Repeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

func sequential(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
