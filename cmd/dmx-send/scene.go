package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
)

// Scene is a YAML-described sequence of channel states. Channels are
// 1-based, per lighting convention; values are 0-255.
//
// Example:
//
//	loop: true
//	steps:
//	  - hold: 2s
//	    channels:
//	      1: 255
//	      10: 128
//	  - hold: 1s
//	    fade: 500ms
//	    channels:
//	      1: 0
type Scene struct {
	// Loop repeats the steps until interrupted.
	Loop bool `yaml:"loop"`

	// Steps are played in order.
	Steps []Step `yaml:"steps"`
}

// Duration wraps time.Duration to decode YAML strings like "2s" or
// "500ms".
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Step holds a set of channel levels for a duration.
type Step struct {
	// Hold is how long the step's levels stay published.
	Hold Duration `yaml:"hold"`

	// Fade ramps the step's channels from their current levels to the
	// step's levels over this duration before the hold begins. Zero
	// means an instant cut.
	Fade Duration `yaml:"fade"`

	// Channels maps 1-based channel numbers to levels. Channels not
	// named keep their level from previous steps.
	Channels map[int]int `yaml:"channels"`
}

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scene, nil
}

// Validate checks step durations and channel ranges.
func (s *Scene) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scene has no steps")
	}
	for i, step := range s.Steps {
		if step.Hold <= 0 {
			return fmt.Errorf("step %d: hold must be positive", i+1)
		}
		if step.Fade < 0 {
			return fmt.Errorf("step %d: fade must not be negative", i+1)
		}
		for ch, v := range step.Channels {
			if ch < 1 || ch > dmx.UniverseSize {
				return fmt.Errorf("step %d: channel %d out of range 1-%d", i+1, ch, dmx.UniverseSize)
			}
			if v < 0 || v > 255 {
				return fmt.Errorf("step %d: channel %d value %d out of range 0-255", i+1, ch, v)
			}
		}
	}
	return nil
}

// Apply writes a step's levels into the buffer.
func (s Step) Apply(buf *dmx.Buffer) error {
	for ch, v := range s.Channels {
		if err := buf.SetChannel(ch-1, byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// Ramp describes one channel's transition into a step.
type Ramp struct {
	Channel int // 1-based
	From    byte
	To      byte
}

// Ramps captures the transitions from the buffer's current levels to
// the step's levels, for fade interpolation.
func (s Step) Ramps(buf *dmx.Buffer) ([]Ramp, error) {
	ramps := make([]Ramp, 0, len(s.Channels))
	for ch, v := range s.Channels {
		cur, err := buf.Channel(ch - 1)
		if err != nil {
			return nil, err
		}
		ramps = append(ramps, Ramp{Channel: ch, From: cur, To: byte(v)})
	}
	return ramps, nil
}

// ApplyRamps writes the interpolated levels at frac into the buffer.
// frac is the fade progress in (0, 1]; 1 lands exactly on each ramp's
// target.
func ApplyRamps(buf *dmx.Buffer, ramps []Ramp, frac float64) error {
	for _, r := range ramps {
		level := float64(r.From) + (float64(r.To)-float64(r.From))*frac
		if err := buf.SetChannel(r.Channel-1, byte(level+0.5)); err != nil {
			return err
		}
	}
	return nil
}
