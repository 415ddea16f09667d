package ir

import "time"

// AssetType tags the kind of value an asset holds.
type AssetType string

const (
	AssetStylePalette    AssetType = "stylePalette"
	AssetResource        AssetType = "resource"
	AssetComponentConfig AssetType = "componentConfig"
	AssetPrefab          AssetType = "prefab"
	AssetScript          AssetType = "script"
	AssetAnimation       AssetType = "animation"
)

// ValidAssetTypes lists the asset types understood by the store.
var ValidAssetTypes = map[AssetType]bool{
	AssetStylePalette:    true,
	AssetResource:        true,
	AssetComponentConfig: true,
	AssetPrefab:          true,
	AssetScript:          true,
	AssetAnimation:       true,
}

// Asset is a named, typed, reusable value.
// A single flat struct carries the payload fields of every asset type;
// only the fields matching Type are meaningful.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        AssetType `json:"type"`
	Path        string    `json:"path,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// stylePalette
	Values Config `json:"values,omitempty"`

	// resource
	URL      string `json:"url,omitempty"`
	Content  string `json:"content,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	// componentConfig
	ComponentType string `json:"componentType,omitempty"`
	Config        Config `json:"config,omitempty"`

	// prefab
	Prefab *Prefab `json:"prefab,omitempty"`

	// script
	Source   string `json:"source,omitempty"`
	Language string `json:"language,omitempty"`

	// animation
	Keyframes []Keyframe `json:"keyframes,omitempty"`
	Duration  float64    `json:"duration,omitempty"`
	Easing    string     `json:"easing,omitempty"`
}

// Clone returns a deep copy of the asset.
func (a Asset) Clone() Asset {
	out := a
	if a.Tags != nil {
		out.Tags = append([]string(nil), a.Tags...)
	}
	out.Values = a.Values.Clone()
	out.Config = a.Config.Clone()
	if a.Prefab != nil {
		p := a.Prefab.Clone()
		out.Prefab = &p
	}
	if a.Keyframes != nil {
		out.Keyframes = append([]Keyframe(nil), a.Keyframes...)
	}
	return out
}

// HasTag reports whether the asset carries tag.
func (a Asset) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Keyframe animates one numeric property between two values.
// Duration and Delay are in seconds; zero Duration inherits the animation's.
type Keyframe struct {
	Property string  `json:"property"`
	From     float64 `json:"from"`
	To       float64 `json:"to"`
	Duration float64 `json:"duration,omitempty"`
	Easing   string  `json:"easing,omitempty"`
}

// AnimationClip is the resolved projection of an animation asset.
type AnimationClip struct {
	ID        string     `json:"id"`
	Keyframes []Keyframe `json:"keyframes"`
	Duration  float64    `json:"duration"`
	Easing    string     `json:"easing,omitempty"`
}

// Clip projects an animation asset into an AnimationClip.
func (a Asset) Clip() AnimationClip {
	return AnimationClip{
		ID:        a.ID,
		Keyframes: append([]Keyframe(nil), a.Keyframes...),
		Duration:  a.Duration,
		Easing:    a.Easing,
	}
}
