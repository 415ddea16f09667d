package animation

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/roach88/scenekit/internal/ir"
)

// Easings maps easing names accepted in animation assets to tween funcs.
// Unknown names fall back to linear.
var Easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"ease-in":      ease.InQuad,
	"ease-out":     ease.OutQuad,
	"ease-in-out":  ease.InOutQuad,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"bounce":       ease.OutBounce,
}

func easing(names ...string) ease.TweenFunc {
	for _, n := range names {
		if fn, ok := Easings[n]; ok {
			return fn
		}
	}
	return ease.Linear
}

// Player is a tween-driven Animator. Callers advance it with Update.
// Not safe for concurrent use.
type Player struct {
	clips  ClipSource
	tracks map[string]*track
	logger *slog.Logger
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PlayerOption {
	return func(p *Player) {
		p.logger = l
	}
}

// NewPlayer creates a player that looks clips up in clips.
func NewPlayer(clips ClipSource, opts ...PlayerOption) *Player {
	p := &Player{
		clips:  clips,
		tracks: make(map[string]*track),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// track is the playback state of one handle.
type track struct {
	clip      ir.AnimationClip
	opts      PlayOptions
	tweens    []*gween.Tween
	values    map[string]float64
	iteration int
	reverse   bool
	paused    bool
	done      bool
}

// Play implements Animator. Playing on a busy handle replaces its track.
// An unknown animation id is logged and ignored.
func (p *Player) Play(handle, animationID string, opts PlayOptions) {
	clip, ok := p.clips(animationID)
	if !ok {
		p.logger.Warn("animation not found", "handle", handle, "animation", animationID)
		return
	}
	t := &track{
		clip:    clip,
		opts:    opts,
		values:  make(map[string]float64, len(clip.Keyframes)),
		reverse: opts.Direction == DirectionReverse,
	}
	t.start()
	p.tracks[handle] = t
	p.logger.Debug("animation started", "handle", handle, "animation", animationID)
}

// start builds one tween per keyframe for the current iteration.
func (t *track) start() {
	t.tweens = make([]*gween.Tween, len(t.clip.Keyframes))
	for i, kf := range t.clip.Keyframes {
		from, to := kf.From, kf.To
		if t.reverse {
			from, to = to, from
		}
		d := kf.Duration
		if d <= 0 {
			d = t.clip.Duration
		}
		if t.opts.Duration > 0 {
			d = t.opts.Duration
		}
		t.values[kf.Property] = from
		if d <= 0 {
			t.values[kf.Property] = to
			continue
		}
		t.tweens[i] = gween.New(float32(from), float32(to), float32(d), easing(kf.Easing, t.clip.Easing))
	}
}

// advance moves the track by dt seconds and handles iteration ends.
func (t *track) advance(dt float32) {
	finished := true
	for i, tw := range t.tweens {
		if tw == nil {
			continue
		}
		v, end := tw.Update(dt)
		t.values[t.clip.Keyframes[i].Property] = float64(v)
		if !end {
			finished = false
		}
	}
	if !finished {
		return
	}
	t.iteration++
	if !t.repeats() {
		t.done = true
		return
	}
	if t.opts.Direction == DirectionAlternate {
		t.reverse = !t.reverse
	}
	t.start()
}

func (t *track) repeats() bool {
	if t.opts.LoopCount > 0 {
		return t.iteration < t.opts.LoopCount
	}
	return t.opts.Loop
}

// Update advances every playing track by dt seconds.
func (p *Player) Update(dt float32) {
	for _, handle := range slices.Sorted(maps.Keys(p.tracks)) {
		t := p.tracks[handle]
		if t.paused || t.done {
			continue
		}
		t.advance(dt)
		if t.done {
			p.logger.Debug("animation finished", "handle", handle, "animation", t.clip.ID)
		}
	}
}

// Stop implements Animator. The track and its values are dropped.
func (p *Player) Stop(handle string) {
	delete(p.tracks, handle)
}

// Pause implements Animator.
func (p *Player) Pause(handle string) {
	if t, ok := p.tracks[handle]; ok {
		t.paused = true
	}
}

// Resume implements Animator.
func (p *Player) Resume(handle string) {
	if t, ok := p.tracks[handle]; ok {
		t.paused = false
	}
}

// IsPlaying implements Animator. Paused and finished tracks are not playing.
func (p *Player) IsPlaying(handle string) bool {
	t, ok := p.tracks[handle]
	return ok && !t.paused && !t.done
}

// Values returns the current animated property values of a handle.
func (p *Player) Values(handle string) map[string]float64 {
	t, ok := p.tracks[handle]
	if !ok {
		return nil
	}
	return maps.Clone(t.values)
}

// Iterations returns how many full iterations a handle has completed.
func (p *Player) Iterations(handle string) int {
	if t, ok := p.tracks[handle]; ok {
		return t.iteration
	}
	return 0
}
