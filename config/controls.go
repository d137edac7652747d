package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/jyane/vircon/input"
)

const (
	minControlsVersion = 1
	maxControlsVersion = 2

	maxGUIDLength = 32
)

type controlElem struct {
	Button    *string `xml:"button,attr"`
	Axis      *string `xml:"axis,attr"`
	Hat       *string `xml:"hat,attr"`
	Direction *string `xml:"direction,attr"`
}

type joystickElem struct {
	Nickname *string `xml:"nickname,attr"`
	Name     *string `xml:"name"`
	GUID     *string `xml:"guid"`

	Left        *controlElem `xml:"left"`
	Right       *controlElem `xml:"right"`
	Up          *controlElem `xml:"up"`
	Down        *controlElem `xml:"down"`
	ButtonA     *controlElem `xml:"button-a"`
	ButtonB     *controlElem `xml:"button-b"`
	ButtonX     *controlElem `xml:"button-x"`
	ButtonY     *controlElem `xml:"button-y"`
	ButtonL     *controlElem `xml:"button-l"`
	ButtonR     *controlElem `xml:"button-r"`
	ButtonStart *controlElem `xml:"button-start"`
}

type controlsDoc struct {
	XMLName   xml.Name       `xml:"controls"`
	Version   *int           `xml:"version,attr"`
	Joysticks []joystickElem `xml:"joystick"`
}

// LoadControls reads the controls file at path. On failure it returns the
// default mapping along with the error.
func LoadControls(path string) (input.Mapping, error) {
	glog.Infof("Loading controls from %q", path)
	m, err := loadControls(path)
	if err != nil {
		return input.DefaultMapping(), fmt.Errorf("cannot load controls file: %w", err)
	}
	return m, nil
}

func loadControls(path string) (input.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return input.Mapping{}, err
	}
	var doc controlsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return input.Mapping{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := checkVersion(doc.Version, minControlsVersion, maxControlsVersion); err != nil {
		return input.Mapping{}, err
	}
	if len(doc.Joysticks) != 1 {
		return input.Mapping{}, fmt.Errorf("expected exactly one <joystick> element, found %d", len(doc.Joysticks))
	}
	return parseJoystick(doc.Joysticks[0])
}

func parseJoystick(j joystickElem) (input.Mapping, error) {
	m := input.EmptyMapping()
	if j.Nickname == nil || *j.Nickname == "" {
		return m, errors.New("joystick nickname is missing or empty")
	}
	m.Nickname = *j.Nickname

	if j.Name == nil {
		return m, errors.New("cannot find element <name>")
	}
	m.Name = strings.TrimSpace(*j.Name)

	if j.GUID == nil {
		return m, errors.New("cannot find element <guid>")
	}
	guid := strings.TrimSpace(*j.GUID)
	if err := ValidateGUID(guid); err != nil {
		return m, err
	}
	m.GUID = guid

	directions := map[input.Direction]*controlElem{
		input.Left:  j.Left,
		input.Right: j.Right,
		input.Up:    j.Up,
		input.Down:  j.Down,
	}
	for d, e := range directions {
		c, err := parseControl(e)
		if err != nil {
			return m, fmt.Errorf("<%s>: %w", d, err)
		}
		m.Directions[d] = c
	}

	buttons := map[input.Button]*controlElem{
		input.ButtonA:     j.ButtonA,
		input.ButtonB:     j.ButtonB,
		input.ButtonX:     j.ButtonX,
		input.ButtonY:     j.ButtonY,
		input.ButtonL:     j.ButtonL,
		input.ButtonR:     j.ButtonR,
		input.ButtonStart: j.ButtonStart,
	}
	for b, e := range buttons {
		c, err := parseControl(e)
		if err != nil {
			return m, fmt.Errorf("<button-%s>: %w", b, err)
		}
		m.Buttons[b] = c
	}
	return m, nil
}

// ValidateGUID accepts a non empty string of lowercase hex digit pairs, at
// most 32 characters long.
func ValidateGUID(guid string) error {
	if guid == "" {
		return errors.New("joystick GUID is empty")
	}
	if len(guid) > maxGUIDLength || len(guid)%2 != 0 {
		return fmt.Errorf("joystick GUID %q has an invalid length", guid)
	}
	for _, c := range guid {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return fmt.Errorf("joystick GUID %q is not lowercase hex", guid)
		}
	}
	return nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("negative index %d", i)
	}
	return i, nil
}

// parseControl reads one control element. A missing element leaves the
// control unmapped.
func parseControl(e *controlElem) (input.Control, error) {
	if e == nil {
		return input.Unmapped(), nil
	}
	direction := ""
	if e.Direction != nil {
		direction = strings.ToLower(strings.TrimSpace(*e.Direction))
	}

	switch {
	case e.Button != nil:
		i, err := parseIndex(*e.Button)
		if err != nil {
			return input.Control{}, fmt.Errorf("button: %w", err)
		}
		return input.ButtonControl(i), nil

	case e.Axis != nil:
		i, err := parseIndex(*e.Axis)
		if err != nil {
			return input.Control{}, fmt.Errorf("axis: %w", err)
		}
		switch direction {
		case "plus":
			return input.AxisControl(i, true), nil
		case "minus":
			return input.AxisControl(i, false), nil
		}
		return input.Control{}, fmt.Errorf("invalid axis direction %q", direction)

	case e.Hat != nil:
		i, err := parseIndex(*e.Hat)
		if err != nil {
			return input.Control{}, fmt.Errorf("hat: %w", err)
		}
		bits := map[string]int{
			"left":  input.HatLeft,
			"right": input.HatRight,
			"up":    input.HatUp,
			"down":  input.HatDown,
		}
		bit, ok := bits[direction]
		if !ok {
			return input.Control{}, fmt.Errorf("invalid hat direction %q", direction)
		}
		return input.HatControl(i, bit), nil
	}
	return input.Control{}, errors.New("control has no button, axis or hat attribute")
}
