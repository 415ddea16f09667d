package animation

import (
	"fmt"

	"github.com/roach88/scenekit/internal/assets"
	"github.com/roach88/scenekit/internal/ir"
)

// Direction selects how a clip runs on each iteration.
type Direction string

const (
	DirectionNormal    Direction = "normal"
	DirectionReverse   Direction = "reverse"
	DirectionAlternate Direction = "alternate"
)

// PlayOptions tune a single Play call.
// LoopCount counts total iterations; zero with Loop set repeats forever.
// Duration, in seconds, overrides every keyframe duration when positive.
type PlayOptions struct {
	Loop      bool      `json:"loop,omitempty" yaml:"loop,omitempty"`
	LoopCount int       `json:"loopCount,omitempty" yaml:"loopCount,omitempty"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Duration  float64   `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Animator is the playback collaborator. Handles are element ids.
type Animator interface {
	Play(handle, animationID string, opts PlayOptions)
	Stop(handle string)
	Pause(handle string)
	Resume(handle string)
	IsPlaying(handle string) bool
}

// ClipSource looks up an animation clip by asset id.
type ClipSource func(id string) (ir.AnimationClip, bool)

// FromAssets returns a ClipSource over the animation assets of s.
func FromAssets(s *assets.Store) ClipSource {
	return func(id string) (ir.AnimationClip, bool) {
		a, ok := s.Get(id)
		if !ok || a.Type != ir.AssetAnimation {
			return ir.AnimationClip{}, false
		}
		return a.Clip(), true
	}
}

// Clips returns a ClipSource over a fixed set of clips.
func Clips(list ...ir.AnimationClip) ClipSource {
	byID := make(map[string]ir.AnimationClip, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	return func(id string) (ir.AnimationClip, bool) {
		c, ok := byID[id]
		return c, ok
	}
}

// ParseOptions reads play options from a resolved animation component
// config. Unknown keys are ignored.
func ParseOptions(cfg map[string]any) (PlayOptions, error) {
	var opts PlayOptions
	if v, ok := cfg["loop"]; ok {
		b, ok := v.(bool)
		if !ok {
			return opts, fmt.Errorf("loop: expected boolean, got %T", v)
		}
		opts.Loop = b
	}
	if v, ok := cfg["loopCount"]; ok {
		n, ok := number(v)
		if !ok || n < 0 {
			return opts, fmt.Errorf("loopCount: expected non-negative number, got %v", v)
		}
		opts.LoopCount = int(n)
	}
	if v, ok := cfg["direction"]; ok {
		s, _ := v.(string)
		switch Direction(s) {
		case DirectionNormal, DirectionReverse, DirectionAlternate:
			opts.Direction = Direction(s)
		default:
			return opts, fmt.Errorf("direction: unknown value %v", v)
		}
	}
	if v, ok := cfg["duration"]; ok {
		n, ok := number(v)
		if !ok || n < 0 {
			return opts, fmt.Errorf("duration: expected non-negative number, got %v", v)
		}
		opts.Duration = n
	}
	return opts, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
