package player

import "sync"

// Media is the playback backend. Positions and durations are milliseconds,
// volume is in [0, 1].
type Media interface {
	SetSource(path string)
	Source() string
	Position() int64
	SetPosition(ms int64)
	Duration() int64
	Play()
	Pause()
	Playing() bool
	Volume() float64
	SetVolume(v float64)
}

// Host is the editor embedding the player. Both calls are fire-and-forget
// and may be made from any goroutine.
type Host interface {
	Message(text string)
	Eval(name string, args ...any)
}

// VirtualMedia is a Media without decoding: a clock advanced by its owner.
type VirtualMedia struct {
	mu       sync.Mutex
	source   string
	duration int64
	position int64
	playing  bool
	volume   float64
}

func NewVirtualMedia(duration int64) *VirtualMedia {
	return &VirtualMedia{duration: duration, volume: 1}
}

func (m *VirtualMedia) SetSource(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = path
	m.position = 0
	m.playing = false
}

func (m *VirtualMedia) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

func (m *VirtualMedia) Position() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *VirtualMedia) SetPosition(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = m.clamp(ms)
}

func (m *VirtualMedia) clamp(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	if m.duration > 0 && ms > m.duration {
		return m.duration
	}
	return ms
}

func (m *VirtualMedia) Duration() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *VirtualMedia) SetDuration(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = ms
	m.position = m.clamp(m.position)
}

func (m *VirtualMedia) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = true
}

func (m *VirtualMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

func (m *VirtualMedia) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *VirtualMedia) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *VirtualMedia) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	m.volume = v
}

// Advance moves the clock forward by ms while playing and returns the new
// position. Playback stops at the end of the media.
func (m *VirtualMedia) Advance(ms int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.position = m.clamp(m.position + ms)
		if m.duration > 0 && m.position == m.duration {
			m.playing = false
		}
	}
	return m.position
}
