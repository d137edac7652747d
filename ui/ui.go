// Package ui runs a machine in a glfw window, with portaudio output and
// joystick input.
package ui

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/jyane/vircon/config"
	"github.com/jyane/vircon/input"
	"github.com/jyane/vircon/vircon"
)

const joystickSlots = int(glfw.JoystickLast-glfw.Joystick1) + 1

type host struct {
	m        *vircon.Machine
	state    *input.State
	settings config.Settings
	window   *glfw.Window
	pacer    *vircon.FramePacer
	poller   *input.Poller
	active   bool
	title    string
}

func (h *host) render() {
	c := h.m.GPU.ClearColor()
	gl.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Flush()
}

func (h *host) updateTitle() {
	title := "Vircon32: No cartridge"
	if h.m.HasCartridge() {
		title = "Vircon32: " + h.m.Cartridge.Title
	}
	if h.m.Paused {
		title += " (paused)"
	}
	if title != h.title {
		h.window.SetTitle(title)
		h.title = title
	}
}

func (h *host) onFocus(w *glfw.Window, focused bool) {
	h.active = focused
	if focused {
		h.m.Resume()
	} else {
		h.m.Pause()
	}
	h.pacer.Skip(time.Now())
}

func (h *host) onIconify(w *glfw.Window, iconified bool) {
	if iconified {
		h.m.Pause()
	} else {
		h.m.Resume()
	}
	h.pacer.Skip(time.Now())
}

func (h *host) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press || !h.active {
		return
	}
	defer h.pacer.Skip(time.Now())
	if key == glfw.KeyF5 {
		h.m.Reset()
		return
	}
	if mods&glfw.ModControl == 0 {
		return
	}
	switch key {
	case glfw.KeyQ:
		w.SetShouldClose(true)
	case glfw.KeyP:
		if h.m.PowerIsOn {
			h.m.PowerOff()
		} else {
			h.m.PowerOn()
		}
	case glfw.KeyR:
		h.m.Reset()
	case glfw.KeyL:
		if h.m.PowerIsOn {
			return
		}
		if err := h.m.LoadCartridge(h.settings.CartridgePath); err != nil {
			glog.Errorf("Cannot load cartridge: %v", err)
		}
	case glfw.KeyU:
		if !h.m.PowerIsOn {
			h.m.UnloadCartridge()
		}
	}
}

func snapshot(j glfw.Joystick) input.Snapshot {
	if !j.Present() {
		return input.Snapshot{}
	}
	s := input.Snapshot{Present: true, Name: j.GetName(), GUID: j.GetGUID()}
	for _, v := range j.GetAxes() {
		s.Axes = append(s.Axes, int16(max(-1, min(1, v))*32767))
	}
	for _, b := range j.GetButtons() {
		s.Buttons = append(s.Buttons, b == glfw.Press)
	}
	for _, v := range j.GetHats() {
		s.Hats = append(s.Hats, int(v))
	}
	return s
}

// pollJoysticks feeds joystick changes to the machine. Input from an
// inactive window is dropped, connections are always tracked.
func (h *host) pollJoysticks() {
	for slot := 0; slot < joystickSlots; slot++ {
		for _, ev := range h.poller.Update(slot, snapshot(glfw.Joystick1+glfw.Joystick(slot))) {
			switch ev.(type) {
			case input.DeviceAdded, input.DeviceRemoved:
			default:
				if !h.active {
					continue
				}
			}
			h.m.ProcessEvent(h.state, ev)
		}
	}
}

func (h *host) loop() {
	for !h.window.ShouldClose() {
		glfw.PollEvents()
		h.pollJoysticks()
		frames := h.pacer.Tick(time.Now())
		for i := 0; i < frames; i++ {
			h.m.RunNextFrame()
		}
		if frames > 0 {
			if !h.m.PowerIsOn || h.m.Paused {
				h.render()
			}
			h.window.SwapBuffers()
			h.updateTitle()
		}
		time.Sleep(time.Millisecond)
	}
}

// Start opens the window and audio output, starts the machine with load
// inserting the media, and runs it until the window is closed. The machine
// is terminated before Start returns.
func Start(m *vircon.Machine, state *input.State, settings config.Settings, width, height int, load func()) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, "Vircon32", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	glog.Infof("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	a := newAudio(m.SPU)
	if err := a.open(); err != nil {
		glog.Warningf("Running without sound: %v", err)
	} else {
		defer a.close()
		m.AttachAudioSource(a)
	}

	h := &host{
		m:        m,
		state:    state,
		settings: settings,
		window:   window,
		pacer:    vircon.NewFramePacer(time.Now()),
		poller:   input.NewPoller(joystickSlots),
		active:   true,
	}
	m.SetRenderFlush(h.render)
	window.SetFocusCallback(h.onFocus)
	window.SetIconifyCallback(h.onIconify)
	window.SetKeyCallback(h.onKey)

	m.Start(load)
	defer m.Terminate()
	h.updateTitle()
	h.loop()
	return nil
}
