package synth

import (
	"errors"
	"fmt"
)

// Sound selects one of the procedural effects.
type Sound int

const (
	Launch Sound = iota
	Explosion
	RapidBurst
)

// Sounds lists every effect, in declaration order.
var Sounds = []Sound{Launch, Explosion, RapidBurst}

func (s Sound) String() string {
	switch s {
	case Launch:
		return "launch"
	case Explosion:
		return "explosion"
	case RapidBurst:
		return "rapid-burst"
	default:
		return fmt.Sprintf("sound(%d)", int(s))
	}
}

// ErrUnknownSound is returned by ParseSound for names that match no effect.
var ErrUnknownSound = errors.New("unknown sound")

// ParseSound returns the effect whose String form is name.
func ParseSound(name string) (Sound, error) {
	for _, s := range Sounds {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSound, name)
}
