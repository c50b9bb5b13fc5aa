package sim

import (
	"fmt"
	"strings"
	"time"
)

// Speed is the delay between AI ticks.
type Speed string

const (
	SpeedTurbo  Speed = "turbo"
	SpeedFast   Speed = "fast"
	SpeedNormal Speed = "normal"
	SpeedSlow   Speed = "slow"
)

// Speeds lists every speed from fastest to slowest.
var Speeds = []Speed{SpeedTurbo, SpeedFast, SpeedNormal, SpeedSlow}

// Interval returns the tick delay. Turbo is zero: the loop only yields.
func (s Speed) Interval() time.Duration {
	switch s {
	case SpeedTurbo:
		return 0
	case SpeedFast:
		return 60 * time.Millisecond
	case SpeedSlow:
		return 200 * time.Millisecond
	default:
		return 120 * time.Millisecond
	}
}

// Next cycles to the following speed, wrapping after slow.
func (s Speed) Next() Speed {
	for i, sp := range Speeds {
		if sp == s {
			return Speeds[(i+1)%len(Speeds)]
		}
	}
	return SpeedNormal
}

// ParseSpeed converts a name such as "fast" into a Speed.
func ParseSpeed(s string) (Speed, error) {
	name := Speed(strings.ToLower(strings.TrimSpace(s)))
	for _, sp := range Speeds {
		if sp == name {
			return sp, nil
		}
	}
	return "", fmt.Errorf("sim: unknown speed %q", s)
}
