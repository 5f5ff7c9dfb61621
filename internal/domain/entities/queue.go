package entities

// Queue is an ordered sequence of tracks. It is intentionally unsynchronized:
// a queue is owned by exactly one playback session and only ever touched from
// that session's command loop.
type Queue struct {
	tracks []*Track
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		tracks: make([]*Track, 0),
	}
}

// PushBack appends a track and returns its position (1-indexed)
func (q *Queue) PushBack(track *Track) int {
	q.tracks = append(q.tracks, track)
	return len(q.tracks)
}

// PushFront inserts a track at the head of the queue
func (q *Queue) PushFront(track *Track) {
	q.tracks = append([]*Track{track}, q.tracks...)
}

// PopFront removes and returns the head track, or nil if the queue is empty
func (q *Queue) PopFront() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	track := q.tracks[0]
	q.tracks = q.tracks[1:]
	return track
}

// PopBack removes and returns the tail track, or nil if the queue is empty.
// Used to undo an enqueue that could not start playback.
func (q *Queue) PopBack() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	track := q.tracks[len(q.tracks)-1]
	q.tracks = q.tracks[:len(q.tracks)-1]
	return track
}

// Peek returns the head track without removing it
func (q *Queue) Peek() *Track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[0]
}

// Len returns the number of queued tracks
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Clear removes all tracks
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}

// Snapshot returns a copy of the queued tracks for display purposes
func (q *Queue) Snapshot() []*Track {
	tracks := make([]*Track, len(q.tracks))
	copy(tracks, q.tracks)
	return tracks
}
