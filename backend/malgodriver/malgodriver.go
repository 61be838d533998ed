// Package malgodriver adapts a renderer.Renderer to a real OS audio
// output device via malgo, the same library the teacher's
// internal/audio package uses for device I/O.
//
// Unlike the teacher's Player, which fed a persistent device from a
// lock-free ring buffer filled by a separate Play() call, this backend
// drives the renderer straight from the malgo callback: OnStartProcessing
// only reads non-blocking command channels and ProcessInterleaved only
// touches pre-allocated buffers, so both are safe to call from the
// audio thread directly, with no ring buffer needed in between.
package malgodriver

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/gen2brain/malgo"

	"github.com/resonant-audio/resound/backend"
	"github.com/resonant-audio/resound/dsp"
	"github.com/resonant-audio/resound/renderer"
)

// Settings configures a Backend at construction time.
type Settings struct {
	// Channels is the number of output channels to request: 2 for
	// stereo, 1 for mono (averaged down from the renderer's stereo
	// output). Defaults to 2 if zero.
	Channels int
	// BufferSizeMillis is the device's period size. Defaults to 20ms,
	// matching the teacher's low-latency wired-headphone default.
	BufferSizeMillis uint32
}

// Backend is a malgo-backed backend.Backend for real-time playback.
type Backend struct {
	settings Settings

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	r           *renderer.Renderer
	scratch     []dsp.Frame
	interleaved []float32
}

// New creates a malgo-backed Backend. Call Setup then Start on it to
// bring up the device.
func New(settings Settings) *Backend {
	if settings.Channels == 0 {
		settings.Channels = 2
	}
	if settings.BufferSizeMillis == 0 {
		settings.BufferSizeMillis = 20
	}
	return &Backend{settings: settings}
}

// Setup initializes the malgo context and queries the playback
// device's native sample rate, falling back to 48000Hz if malgo
// reports none, matching the teacher's getDeviceNativeSampleRate.
func (b *Backend) Setup(preferredSampleRate float64, channels int) (backend.Info, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return backend.Info{}, fmt.Errorf("malgodriver: init context: %w", err)
	}
	b.ctx = ctx

	if channels > 0 {
		b.settings.Channels = channels
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	sampleRate := deviceConfig.SampleRate
	if sampleRate == 0 {
		sampleRate = 48000
	}
	if preferredSampleRate > 0 {
		sampleRate = uint32(preferredSampleRate)
	}

	return backend.Info{SampleRate: float64(sampleRate), Channels: b.settings.Channels}, nil
}

// Start initializes and starts the playback device, wiring its data
// callback directly to r.
func (b *Backend) Start(r *renderer.Renderer) error {
	if b.ctx == nil {
		return fmt.Errorf("malgodriver: Start called before Setup")
	}
	b.r = r

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(b.settings.Channels)
	deviceConfig.PeriodSizeInMilliseconds = b.settings.BufferSizeMillis

	onSendFrames := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		n := int(framecount)
		// Grown only if the device ever requests a larger period than
		// it negotiated at Start; in practice malgo calls back with a
		// stable framecount, so this never re-allocates after warmup.
		if cap(b.scratch) < n {
			b.scratch = make([]dsp.Frame, n)
			b.interleaved = make([]float32, n*b.settings.Channels)
		}
		scratch := b.scratch[:n]
		interleaved := b.interleaved[:n*b.settings.Channels]

		b.r.OnStartProcessing()
		b.r.ProcessInterleaved(scratch, interleaved, b.settings.Channels)

		for i, v := range interleaved {
			binary.LittleEndian.PutUint32(pOutputSample[i*4:], math.Float32bits(v))
		}
	}

	device, err := malgo.InitDevice(b.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSendFrames})
	if err != nil {
		return fmt.Errorf("malgodriver: init device: %w", err)
	}
	b.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("malgodriver: start device: %w", err)
	}
	log.Printf("malgodriver: playback device started (%d ch, %dms buffer)", b.settings.Channels, b.settings.BufferSizeMillis)
	return nil
}

// Stop tears down the device and context. Safe to call more than once.
func (b *Backend) Stop() error {
	if b.device != nil {
		b.device.Stop()
		b.device.Uninit()
		b.device = nil
	}
	if b.ctx != nil {
		if err := b.ctx.Uninit(); err != nil {
			b.ctx.Free()
			b.ctx = nil
			return fmt.Errorf("malgodriver: uninit context: %w", err)
		}
		b.ctx.Free()
		b.ctx = nil
	}
	return nil
}
