package ui

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/jyane/vircon/vircon"
)

// audio plays the SPU output through the default portaudio device. It is
// the machine's hardware audio source.
type audio struct {
	stream  *portaudio.Stream
	spu     *vircon.SPU
	running bool
}

func newAudio(spu *vircon.SPU) *audio {
	return &audio{spu: spu}
}

func (a *audio) fill(out []float32) {
	if a.spu.ThreadPaused() {
		clear(out)
		return
	}
	for i := range out {
		select {
		case x := <-a.spu.Out:
			out[i] = x
		default:
			out[i] = 0
		}
	}
}

func (a *audio) open() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, vircon.SPUSamplingRate, 0, a.fill)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open the audio stream: %w", err)
	}
	a.stream = stream
	return nil
}

// Play starts the stream.
func (a *audio) Play() error {
	if a.running {
		return nil
	}
	if err := a.stream.Start(); err != nil {
		return fmt.Errorf("failed to start the audio stream: %w", err)
	}
	a.running = true
	return nil
}

// Pause stops the stream.
func (a *audio) Pause() error {
	if !a.running {
		return nil
	}
	if err := a.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop the audio stream: %w", err)
	}
	a.running = false
	return nil
}

func (a *audio) close() {
	a.stream.Close()
	portaudio.Terminate()
}
