package subtitle

// Track holds the cues of one subtitle file and the cue shown at the last
// evaluated position. It is owned by a single playback session and is not
// safe for concurrent use.
type Track struct {
	cues    []Cue
	current int
}

func NewTrack(cues []Cue) *Track {
	owned := make([]Cue, len(cues))
	copy(owned, cues)
	return &Track{cues: owned, current: -1}
}

func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cues)
}

// Cues returns a copy of the cue sequence in load order.
func (t *Track) Cues() []Cue {
	if t == nil {
		return nil
	}
	out := make([]Cue, len(t.cues))
	copy(out, t.cues)
	return out
}

// Current returns the active cue, if any.
func (t *Track) Current() (Cue, bool) {
	if t == nil || t.current < 0 {
		return Cue{}, false
	}
	return t.cues[t.current], true
}

// UpdatePosition selects the cue whose inclusive [Start, End] interval contains
// position. Every cue is scanned and the last match in sequence order wins, so
// overlapping cues resolve to the later one. A position that falls in a gap
// leaves the current cue in place. transitioned is true only when the selected
// cue differs, by sequence position, from the previous one.
func (t *Track) UpdatePosition(position float64) (transitioned bool, active Cue, ok bool) {
	if t == nil {
		return false, Cue{}, false
	}
	match := -1
	for i := range t.cues {
		if t.cues[i].Contains(position) {
			match = i
		}
	}
	if match >= 0 && match != t.current {
		t.current = match
		transitioned = true
	}
	active, ok = t.Current()
	return transitioned, active, ok
}

// Next returns the cue following the current one, clamped to the last cue.
// Without a current cue it returns the first cue.
func (t *Track) Next() (Cue, bool) {
	return t.neighbor(1)
}

// Prev returns the cue preceding the current one, clamped to the first cue.
// Without a current cue it returns the first cue.
func (t *Track) Prev() (Cue, bool) {
	return t.neighbor(-1)
}

func (t *Track) neighbor(offset int) (Cue, bool) {
	if t.Len() == 0 {
		return Cue{}, false
	}
	if t.current < 0 {
		return t.cues[0], true
	}
	i := t.current + offset
	if i < 0 {
		i = 0
	}
	if i > len(t.cues)-1 {
		i = len(t.cues) - 1
	}
	return t.cues[i], true
}
