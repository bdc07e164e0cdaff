// Package control turns key events into the control values sprites read.
package control

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	// Axis is -1, 0 or +1 following the last pressed of its two keys.
	Axis Kind = iota + 1
	// Slider steps by -1 or +1 on each press of its keys.
	Slider
	// Trigger is 1 while its key is held.
	Trigger
	// Release counts presses; each read consumes one.
	Release
	// Toggle flips between 0 and 1 on each press.
	Toggle
)

func (k Kind) String() string {
	switch k {
	case Axis:
		return "axis"
	case Slider:
		return "slider"
	case Trigger:
		return "trigger"
	case Release:
		return "release"
	case Toggle:
		return "toggle"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Key is a key code: printable keys use their upper-case ASCII code.
type Key int

const (
	KeyRight       Key = 262
	KeyLeft        Key = 263
	KeyDown        Key = 264
	KeyUp          Key = 265
	KeyLeftShift   Key = 340
	KeyLeftControl Key = 341
)

var keyNames = map[string]Key{
	"right":        KeyRight,
	"left":         KeyLeft,
	"down":         KeyDown,
	"up":           KeyUp,
	"left_shift":   KeyLeftShift,
	"left_control": KeyLeftControl,
	"space":        ' ',
}

// ParseKey resolves a single printable character or a named key.
func ParseKey(name string) (Key, error) {
	if k, ok := keyNames[strings.ToLower(name)]; ok {
		return k, nil
	}
	if len(name) == 1 && name[0] > ' ' && name[0] < 0x7f {
		return Key(strings.ToUpper(name)[0]), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// Mods is a bit set of modifier keys held during a key event.
type Mods int

const ModShift Mods = 1

// MaxReleases caps the number of queued Release reads.
const MaxReleases = 100

type binding struct {
	control int
	sign    int
}

type state struct {
	kind    Kind
	value   int
	pressed bool
}

// Controls maps keys to controls. Not safe for concurrent use; the game loop
// owns it.
type Controls struct {
	keys     map[Key]binding
	controls map[int]*state
}

func New() *Controls {
	return &Controls{keys: map[Key]binding{}, controls: map[int]*state{}}
}

func (c *Controls) addKey(control int, k Key, sign int) {
	if _, dup := c.keys[k]; dup {
		panic(fmt.Sprintf("control: key %d bound twice", k))
	}
	c.keys[k] = binding{control: control, sign: sign}
}

func (c *Controls) add(control int, kind Kind, value int) {
	if _, dup := c.controls[control]; dup {
		panic(fmt.Sprintf("control: control %d defined twice", control))
	}
	c.controls[control] = &state{kind: kind, value: value}
}

func (c *Controls) Axis(control int, minus, plus Key) {
	c.addKey(control, minus, -1)
	c.addKey(control, plus, 1)
	c.add(control, Axis, 0)
}

func (c *Controls) Slider(control int, minus, plus Key, value int) {
	c.addKey(control, minus, -1)
	c.addKey(control, plus, 1)
	c.add(control, Slider, value)
}

func (c *Controls) Trigger(control int, k Key) {
	c.addKey(control, k, 0)
	c.add(control, Trigger, 0)
}

func (c *Controls) Release(control int, k Key) {
	c.addKey(control, k, 0)
	c.add(control, Release, 0)
}

func (c *Controls) Toggle(control int, k Key, on bool) {
	c.addKey(control, k, 0)
	v := 0
	if on {
		v = 1
	}
	c.add(control, Toggle, v)
}

// Get reads a control. Reading a Release control consumes one press.
func (c *Controls) Get(control int) int {
	s, ok := c.controls[control]
	if !ok {
		panic(fmt.Sprintf("control: unknown control %d", control))
	}
	if s.kind == Release {
		if s.value == 0 {
			return 0
		}
		s.value--
		return 1
	}
	return s.value
}

// InputKey applies a key press or release. Unbound keys are ignored.
func (c *Controls) InputKey(press bool, k Key, mods Mods) {
	b, ok := c.keys[k]
	if !ok {
		return
	}
	s := c.controls[b.control]
	switch s.kind {
	case Axis:
		if press {
			s.value = b.sign
		} else if s.value == b.sign {
			s.value = 0
		}
	case Trigger:
		s.value = 0
		if press {
			s.value = 1
		}
	default:
		// the rest act on press edges only
		if s.pressed == press {
			return
		}
		s.pressed = press
		if !press {
			return
		}
		switch s.kind {
		case Slider:
			s.value += b.sign
		case Release:
			step := 1
			if mods&ModShift != 0 {
				step = 10
			}
			s.value = min(MaxReleases, s.value+step)
		case Toggle:
			s.value ^= 1
		}
	}
}
