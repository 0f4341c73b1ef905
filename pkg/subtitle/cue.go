package subtitle

import (
	"fmt"
	"time"
)

// Timestamp is a cue time split into its clock fields.
type Timestamp struct {
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

// TimeToMillis converts a cue timestamp to milliseconds.
func TimeToMillis(t Timestamp) float64 {
	totalSeconds := float64(t.Hours*3600+t.Minutes*60+t.Seconds) + float64(t.Milliseconds)/1000.0
	return totalSeconds * 1000
}

func TimestampFromDuration(d time.Duration) Timestamp {
	if d < 0 {
		d = 0
	}
	ms := int(d / time.Millisecond)
	return Timestamp{
		Hours:        ms / 3600000,
		Minutes:      ms / 60000 % 60,
		Seconds:      ms / 1000 % 60,
		Milliseconds: ms % 1000,
	}
}

// TimestampFromMillis is the inverse of TimeToMillis, truncated to whole milliseconds.
func TimestampFromMillis(ms float64) Timestamp {
	return TimestampFromDuration(time.Duration(ms) * time.Millisecond)
}

// String renders the SubRip form HH:MM:SS,mmm.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", t.Hours, t.Minutes, t.Seconds, t.Milliseconds)
}

// Cue is one subtitle entry. Start and End are in milliseconds.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

func (c Cue) Contains(position float64) bool {
	return c.Start <= position && c.End >= position
}

func (c Cue) StartTimestamp() Timestamp {
	return TimestampFromMillis(c.Start)
}
