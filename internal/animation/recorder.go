package animation

// Call is one recorded Animator invocation.
type Call struct {
	Method      string      `json:"method" yaml:"method"`
	Handle      string      `json:"handle" yaml:"handle"`
	AnimationID string      `json:"animationId,omitempty" yaml:"animationId,omitempty"`
	Options     PlayOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// Recorder is an Animator that records calls and tracks which handles are
// playing. Used by the preview server and tests.
type Recorder struct {
	Calls   []Call
	playing map[string]bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{playing: make(map[string]bool)}
}

func (r *Recorder) Play(handle, animationID string, opts PlayOptions) {
	r.Calls = append(r.Calls, Call{Method: "play", Handle: handle, AnimationID: animationID, Options: opts})
	r.playing[handle] = true
}

func (r *Recorder) Stop(handle string) {
	r.Calls = append(r.Calls, Call{Method: "stop", Handle: handle})
	delete(r.playing, handle)
}

func (r *Recorder) Pause(handle string) {
	r.Calls = append(r.Calls, Call{Method: "pause", Handle: handle})
	r.playing[handle] = false
}

func (r *Recorder) Resume(handle string) {
	r.Calls = append(r.Calls, Call{Method: "resume", Handle: handle})
	if _, ok := r.playing[handle]; ok {
		r.playing[handle] = true
	}
}

func (r *Recorder) IsPlaying(handle string) bool {
	return r.playing[handle]
}

// Reset clears recorded calls and playing state.
func (r *Recorder) Reset() {
	r.Calls = nil
	clear(r.playing)
}
