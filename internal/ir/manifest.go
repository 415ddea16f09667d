package ir

// Manifest is the persisted, authored document describing an application:
// its routes, scenes, shared assets and prefabs.
type Manifest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Description  string    `json:"description,omitempty"`
	Author       string    `json:"author,omitempty"`
	Routes       []Route   `json:"routes"`
	Scenes       []Scene   `json:"scenes"`
	DefaultRoute string    `json:"defaultRoute,omitempty"`
	Assets       []Asset   `json:"assets"`
	Prefabs      []Prefab  `json:"prefabs,omitempty"`
	Settings     *Settings `json:"settings,omitempty"`
}

// Settings holds manifest-wide presentation hints.
type Settings struct {
	Width           float64  `json:"width,omitempty"`
	Height          float64  `json:"height,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Responsive      bool     `json:"responsive,omitempty"`
	AssetPaths      []string `json:"assetPaths,omitempty"`

	// DefaultUnit qualifies bare numbers on length-like style properties.
	DefaultUnit string `json:"defaultUnit,omitempty"`

	// SanitizeContent strips markup from node content before presentation.
	SanitizeContent bool `json:"sanitizeContent,omitempty"`
}

// SceneByID returns the scene with the given id, or nil.
func (m *Manifest) SceneByID(id string) *Scene {
	for i := range m.Scenes {
		if m.Scenes[i].ID == id {
			return &m.Scenes[i]
		}
	}
	return nil
}

// PrefabByID returns the prefab with the given id, or nil.
func (m *Manifest) PrefabByID(id string) *Prefab {
	for i := range m.Prefabs {
		if m.Prefabs[i].ID == id {
			return &m.Prefabs[i]
		}
	}
	return nil
}

// EffectiveSettings returns Settings with defaults filled in.
func (m *Manifest) EffectiveSettings() Settings {
	var s Settings
	if m.Settings != nil {
		s = *m.Settings
	}
	if s.DefaultUnit == "" {
		s.DefaultUnit = "px"
	}
	return s
}
