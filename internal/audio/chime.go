// Package audio plays the door chime when the train's doors start moving.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

const (
	noteLength = 120 * time.Millisecond
	noteGap    = 40 * time.Millisecond
)

// Chime owns the speaker mixer. Playing before Init, or after a failed
// Init, is a silent no-op.
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewChime() *Chime {
	return &Chime{mixer: &beep.Mixer{}}
}

// Init opens the audio device. Hosts without one get an error and keep
// running silently.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close drops queued sounds.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// DoorsOpening plays a rising two-note chime.
func (c *Chime) DoorsOpening() error { return c.play(true) }

// DoorsClosing plays the falling variant.
func (c *Chime) DoorsClosing() error { return c.play(false) }

func (c *Chime) play(opening bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}
	s, err := DoorTone(sampleRate, opening)
	if err != nil {
		return err
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
	return nil
}

// DoorTone builds the chime: two sine notes separated by a short gap,
// low then high when opening and high then low when closing.
func DoorTone(sr beep.SampleRate, opening bool) (beep.Streamer, error) {
	first, second := 660.0, 880.0
	if !opening {
		first, second = second, first
	}
	a, err := note(sr, first)
	if err != nil {
		return nil, err
	}
	b, err := note(sr, second)
	if err != nil {
		return nil, err
	}
	return beep.Seq(a, beep.Silence(sr.N(noteGap)), b), nil
}

func note(sr beep.SampleRate, freq float64) (beep.Streamer, error) {
	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, err
	}
	return &effects.Volume{
		Streamer: beep.Take(sr.N(noteLength), tone),
		Base:     2,
		Volume:   -2,
	}, nil
}
