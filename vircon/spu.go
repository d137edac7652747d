package vircon

import (
	"sync/atomic"

	"github.com/golang/glog"
)

// SPU local ports.
const (
	SPUPortCommand = iota
	SPUPortGlobalVolume
	SPUPortSelectedSound
	SPUPortSelectedChannel
	SPUPortSoundLength
	SPUPortSoundPlayWithLoop
	SPUPortSoundLoopStart
	SPUPortSoundLoopEnd
	SPUPortChannelState
	SPUPortChannelAssignedSound
	SPUPortChannelVolume
	SPUPortChannelSpeed
	SPUPortChannelLoopEnabled
	SPUPortChannelPosition

	spuPorts
)

// SPU commands written to the command port.
const (
	SPUCommandPlaySelectedChannel  = 0x30
	SPUCommandPauseSelectedChannel = 0x31
	SPUCommandStopSelectedChannel  = 0x32
	SPUCommandPauseAllChannels     = 0x33
	SPUCommandResumeAllChannels    = 0x34
	SPUCommandStopAllChannels      = 0x35
)

// Channel states.
const (
	ChannelStopped = 0x40
	ChannelPaused  = 0x41
	ChannelPlaying = 0x42
)

const (
	SPUMaximumCartridgeSounds  = 1024
	SPUMaximumBiosSamples      = 1024 * 1024
	SPUMaximumCartridgeSamples = 256 * 1024 * 1024

	samplesPerFrame = SPUSamplingRate / FramesPerSecond
	biosSoundIndex  = -1
)

// AudioSource is the host's hardware audio output.
type AudioSource interface {
	Play() error
	Pause() error
}

// Sound is an SPU sound resource. Each sample word holds a 16-bit left
// sample in the low half and a 16-bit right sample in the high half.
type Sound struct {
	Samples      []Word
	PlayWithLoop bool
	LoopStart    int32
	LoopEnd      int32
}

type channel struct {
	state    int32
	sound    int32
	volume   float32
	speed    float32
	loop     bool
	position float64
}

// SPU keeps the audio resources and channel state, and mixes one frame of
// samples per ChangeFrame into Out. The host playback thread drains Out.
type SPU struct {
	BiosSound       *Sound
	CartridgeSounds []*Sound

	GlobalVolume    float32
	selectedSound   int32
	selectedChannel int32
	channels        [SPUSoundChannels]channel

	OutputVolume float32
	Mute         bool

	// Out carries interleaved stereo samples to the playback thread.
	Out chan float32

	threadPaused atomic.Bool
	source       AudioSource
}

// NewSPU creates an SPU whose output channel buffers one second of audio.
func NewSPU() *SPU {
	s := &SPU{
		OutputVolume: 1,
		Out:          make(chan float32, 2*SPUSamplingRate),
	}
	s.Reset()
	return s
}

// SetBufferedFrames resizes Out to hold n frames of audio. Call it before
// the playback thread starts draining Out.
func (s *SPU) SetBufferedFrames(n int) {
	s.Out = make(chan float32, 2*samplesPerFrame*max(n, 1))
}

// AttachSource sets the hardware audio source driven by pause and resume.
func (s *SPU) AttachSource(source AudioSource) {
	s.source = source
}

// InitializeAudio starts playback on the attached source.
func (s *SPU) InitializeAudio() {
	s.threadPaused.Store(false)
	s.playSource()
}

// TerminateAudio stops playback on the attached source.
func (s *SPU) TerminateAudio() {
	s.threadPaused.Store(true)
	s.pauseSource()
}

// ThreadPaused is read by the playback thread to output silence.
func (s *SPU) ThreadPaused() bool {
	return s.threadPaused.Load()
}

// SetThreadPaused sets the playback thread pause flag.
func (s *SPU) SetThreadPaused(paused bool) {
	s.threadPaused.Store(paused)
}

func (s *SPU) playSource() {
	if s.source == nil {
		return
	}
	if err := s.source.Play(); err != nil {
		glog.Warningf("Failed to play the audio source: %v", err)
	}
}

func (s *SPU) pauseSource() {
	if s.source == nil {
		return
	}
	if err := s.source.Pause(); err != nil {
		glog.Warningf("Failed to pause the audio source: %v", err)
	}
}

// SetOutputVolume sets the linear output gain.
func (s *SPU) SetOutputVolume(volume float32) {
	s.OutputVolume = volume
}

// SetMute mutes or unmutes the output.
func (s *SPU) SetMute(mute bool) {
	s.Mute = mute
}

// LoadSound creates a sound resource from sample data.
func (s *SPU) LoadSound(samples []Word) *Sound {
	return &Sound{Samples: samples, LoopEnd: int32(len(samples)) - 1}
}

// UnloadSound releases the sample data of a sound.
func (s *SPU) UnloadSound(sound *Sound) {
	sound.Samples = nil
	sound.LoopStart, sound.LoopEnd = 0, 0
}

// LoadBiosSound replaces the BIOS sound.
func (s *SPU) LoadBiosSound(samples []Word) {
	s.BiosSound = s.LoadSound(samples)
}

// AddCartridgeSound appends a cartridge sound.
func (s *SPU) AddCartridgeSound(samples []Word) {
	s.CartridgeSounds = append(s.CartridgeSounds, s.LoadSound(samples))
}

// UnloadCartridgeSounds stops all channels and releases every cartridge sound.
func (s *SPU) UnloadCartridgeSounds() {
	s.StopAllChannels()
	for _, sound := range s.CartridgeSounds {
		s.UnloadSound(sound)
	}
	s.CartridgeSounds = nil
}

// StopAllChannels stops every channel and rewinds it.
func (s *SPU) StopAllChannels() {
	for i := range s.channels {
		s.channels[i].state = ChannelStopped
		s.channels[i].position = 0
	}
}

// Reset stops all channels and restores default parameters.
func (s *SPU) Reset() {
	s.GlobalVolume = 1
	s.selectedSound = 0
	s.selectedChannel = 0
	for i := range s.channels {
		s.channels[i] = channel{state: ChannelStopped, sound: biosSoundIndex, volume: 1, speed: 1}
	}
}

func (s *SPU) sound(index int32) *Sound {
	if index == biosSoundIndex {
		return s.BiosSound
	}
	if index < 0 || int(index) >= len(s.CartridgeSounds) {
		return nil
	}
	return s.CartridgeSounds[index]
}

// ChangeFrame mixes one frame of audio from the playing channels.
func (s *SPU) ChangeFrame() {
	gain := s.GlobalVolume * s.OutputVolume
	if s.Mute {
		gain = 0
	}
	for i := 0; i < samplesPerFrame; i++ {
		var left, right float32
		for c := range s.channels {
			l, r := s.nextSample(&s.channels[c])
			left += l
			right += r
		}
		s.push(left * gain)
		s.push(right * gain)
	}
}

func (s *SPU) push(v float32) {
	select {
	case s.Out <- v:
	default:
	}
}

func (s *SPU) nextSample(c *channel) (float32, float32) {
	if c.state != ChannelPlaying {
		return 0, 0
	}
	sound := s.sound(c.sound)
	if sound == nil || int(c.position) >= len(sound.Samples) {
		c.state = ChannelStopped
		c.position = 0
		return 0, 0
	}
	w := sound.Samples[int(c.position)]
	left := float32(int16(w)) / 32768 * c.volume
	right := float32(int16(w>>16)) / 32768 * c.volume

	c.position += float64(c.speed)
	end := float64(len(sound.Samples))
	if c.loop && sound.PlayWithLoop {
		end = float64(sound.LoopEnd) + 1
	}
	if c.position >= end {
		if c.loop && sound.PlayWithLoop {
			c.position = float64(sound.LoopStart)
		} else {
			c.state = ChannelStopped
			c.position = 0
		}
	}
	return left, right
}

func (s *SPU) runCommand(command int32) {
	c := &s.channels[s.selectedChannel]
	switch command {
	case SPUCommandPlaySelectedChannel:
		if c.state != ChannelPaused {
			c.position = 0
		}
		c.state = ChannelPlaying
	case SPUCommandPauseSelectedChannel:
		if c.state == ChannelPlaying {
			c.state = ChannelPaused
		}
	case SPUCommandStopSelectedChannel:
		c.state = ChannelStopped
		c.position = 0
	case SPUCommandPauseAllChannels:
		for i := range s.channels {
			if s.channels[i].state == ChannelPlaying {
				s.channels[i].state = ChannelPaused
			}
		}
	case SPUCommandResumeAllChannels:
		for i := range s.channels {
			if s.channels[i].state == ChannelPaused {
				s.channels[i].state = ChannelPlaying
			}
		}
	case SPUCommandStopAllChannels:
		s.StopAllChannels()
	default:
		glog.V(1).Infof("Unknown SPU command: 0x%02x", command)
	}
}

// ReadAddress reads an SPU port.
func (s *SPU) ReadAddress(local int32) (Word, bool) {
	c := &s.channels[s.selectedChannel]
	sound := s.sound(s.selectedSound)
	switch local {
	case SPUPortCommand:
		return 0, true
	case SPUPortGlobalVolume:
		return FloatWord(s.GlobalVolume), true
	case SPUPortSelectedSound:
		return IntegerWord(s.selectedSound), true
	case SPUPortSelectedChannel:
		return IntegerWord(s.selectedChannel), true
	case SPUPortSoundLength, SPUPortSoundPlayWithLoop, SPUPortSoundLoopStart, SPUPortSoundLoopEnd:
		if sound == nil {
			return 0, true
		}
		switch local {
		case SPUPortSoundLength:
			return IntegerWord(int32(len(sound.Samples))), true
		case SPUPortSoundPlayWithLoop:
			return BoolWord(sound.PlayWithLoop), true
		case SPUPortSoundLoopStart:
			return IntegerWord(sound.LoopStart), true
		}
		return IntegerWord(sound.LoopEnd), true
	case SPUPortChannelState:
		return IntegerWord(c.state), true
	case SPUPortChannelAssignedSound:
		return IntegerWord(c.sound), true
	case SPUPortChannelVolume:
		return FloatWord(c.volume), true
	case SPUPortChannelSpeed:
		return FloatWord(c.speed), true
	case SPUPortChannelLoopEnabled:
		return BoolWord(c.loop), true
	case SPUPortChannelPosition:
		return IntegerWord(int32(c.position)), true
	}
	return 0, false
}

// WriteAddress writes an SPU port. Out of range selections are ignored.
func (s *SPU) WriteAddress(local int32, value Word) bool {
	c := &s.channels[s.selectedChannel]
	sound := s.sound(s.selectedSound)
	switch local {
	case SPUPortCommand:
		s.runCommand(value.AsInteger())
	case SPUPortGlobalVolume:
		s.GlobalVolume = clamp(value.AsFloat(), 0, 8)
	case SPUPortSelectedSound:
		if v := value.AsInteger(); v >= biosSoundIndex && int(v) < len(s.CartridgeSounds) {
			s.selectedSound = v
		}
	case SPUPortSelectedChannel:
		if v := value.AsInteger(); v >= 0 && v < SPUSoundChannels {
			s.selectedChannel = v
		}
	case SPUPortSoundLength:
		return false
	case SPUPortSoundPlayWithLoop:
		if sound != nil {
			sound.PlayWithLoop = value != 0
		}
	case SPUPortSoundLoopStart:
		if sound != nil {
			sound.LoopStart = clampIndex(value.AsInteger(), len(sound.Samples))
		}
	case SPUPortSoundLoopEnd:
		if sound != nil {
			sound.LoopEnd = clampIndex(value.AsInteger(), len(sound.Samples))
		}
	case SPUPortChannelState:
		return false
	case SPUPortChannelAssignedSound:
		if v := value.AsInteger(); v >= biosSoundIndex && int(v) < len(s.CartridgeSounds) {
			c.sound = v
			c.state = ChannelStopped
			c.position = 0
		}
	case SPUPortChannelVolume:
		c.volume = clamp(value.AsFloat(), 0, 8)
	case SPUPortChannelSpeed:
		c.speed = clamp(value.AsFloat(), 0, 128)
	case SPUPortChannelLoopEnabled:
		c.loop = value != 0
	case SPUPortChannelPosition:
		if sound != nil {
			c.position = float64(clampIndex(value.AsInteger(), len(sound.Samples)))
		}
	default:
		return false
	}
	return true
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}

func clampIndex(v int32, length int) int32 {
	return max(0, min(int32(length)-1, v))
}
