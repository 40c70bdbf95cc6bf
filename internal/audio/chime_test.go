package audio

import (
	"testing"

	"github.com/gopxl/beep"
)

func drain(t *testing.T, s beep.Streamer) (total int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			for _, v := range buf[i] {
				if v > peak {
					peak = v
				}
				if -v > peak {
					peak = -v
				}
			}
		}
		total += n
		if !ok {
			return total, peak
		}
		if total > 10*int(sampleRate) {
			t.Fatal("chime never ended")
		}
	}
}

func TestDoorToneLength(t *testing.T) {
	sr := beep.SampleRate(8000)
	want := 2*sr.N(noteLength) + sr.N(noteGap)
	for _, opening := range []bool{true, false} {
		s, err := DoorTone(sr, opening)
		if err != nil {
			t.Fatalf("DoorTone(%v): %v", opening, err)
		}
		got, peak := drain(t, s)
		if got != want {
			t.Errorf("DoorTone(%v) streamed %d samples, want %d", opening, got, want)
		}
		if peak <= 0 || peak > 0.26 {
			t.Errorf("DoorTone(%v) peak = %v, want quiet but audible", opening, peak)
		}
	}
}

func TestDoorToneRejectsLowSampleRate(t *testing.T) {
	if _, err := DoorTone(beep.SampleRate(1000), true); err == nil {
		t.Fatal("expected error for a sample rate below the Nyquist limit")
	}
}

func TestChimeWithoutInitIsSilent(t *testing.T) {
	c := NewChime()
	if err := c.DoorsOpening(); err != nil {
		t.Fatalf("DoorsOpening: %v", err)
	}
	if err := c.DoorsClosing(); err != nil {
		t.Fatalf("DoorsClosing: %v", err)
	}
	if c.mixer.Len() != 0 {
		t.Fatalf("mixer has %d streamers before Init", c.mixer.Len())
	}
	c.Close()
}
