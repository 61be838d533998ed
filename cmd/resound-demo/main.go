// resound-demo wires up a minimal AudioManager, plays a generated sine
// tone through it, and shuts down cleanly on Ctrl+C.
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resonant-audio/resound/backend/malgodriver"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/manager"
	"github.com/resonant-audio/resound/sound"
	"github.com/resonant-audio/resound/tween"
)

func main() {
	freqHz := flag.Float64("freq", 440, "tone frequency in Hz")
	durationSec := flag.Float64("duration", 3, "tone duration in seconds")
	volumeDB := flag.Float64("volume", -6, "tone volume in decibels")
	flag.Parse()

	log.Println("resound-demo starting...")

	settings := manager.DefaultSettings()
	settings.Backend = malgodriver.New(malgodriver.Settings{Channels: 2})
	m, err := manager.New(settings)
	if err != nil {
		log.Fatalf("failed to start audio manager: %v", err)
	}
	defer m.Close()

	info := m.Info()
	log.Printf("backend ready (sample_rate=%v channels=%v)", info.SampleRate, info.Channels)

	frames := generateSineTone(*freqHz, *durationSec, info.SampleRate)
	handle, err := m.PlayStatic(frames, info.SampleRate, sound.StaticSoundSettings{
		Volume:             tween.Fixed(dsp.Decibels(*volumeDB)),
		Panning:            tween.Fixed(dsp.PanCenter),
		FadeInTween:        &tween.Tween{StartTime: tween.Immediate, Duration: 50 * time.Millisecond, Easing: tween.LinearEasing},
		InternalBufferSize: settings.InternalBufferSize,
	})
	if err != nil {
		log.Fatalf("failed to play tone: %v", err)
	}
	log.Printf("playing %gHz tone for %gs at %gdB", *freqHz, *durationSec, *volumeDB)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for !handle.Finished() {
			time.Sleep(50 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Println("tone finished, shutting down")
	case <-sigChan:
		log.Println("shutting down...")
		handle.Stop(tween.Tween{StartTime: tween.Immediate, Duration: 100 * time.Millisecond, Easing: tween.LinearEasing})
		time.Sleep(150 * time.Millisecond)
	}
}

// generateSineTone renders a stereo sine wave at freqHz for durationSec
// seconds of audio at sampleRate, as a plain in-memory frame array
// suitable for AudioManager.PlayStatic.
func generateSineTone(freqHz, durationSec, sampleRate float64) []dsp.Frame {
	n := int(durationSec * sampleRate)
	frames := make([]dsp.Frame, n)
	for i := range frames {
		t := float64(i) / sampleRate
		v := float32(math.Sin(2 * math.Pi * freqHz * t))
		frames[i] = dsp.Frame{Left: v, Right: v}
	}
	return frames
}
