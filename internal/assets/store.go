package assets

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/scenekit/internal/ir"
)

// Store is the asset registry. The four indices (id, path, type, tag) are
// kept consistent by Add and Remove.
type Store struct {
	assets map[string]ir.Asset
	byPath map[string]string
	byType map[ir.AssetType]map[string]struct{}
	byTag  map[string]map[string]struct{}

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for degraded resolutions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithNow sets the wall clock used to stamp assets added without timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		assets: make(map[string]ir.Asset),
		byPath: make(map[string]string),
		byType: make(map[ir.AssetType]map[string]struct{}),
		byTag:  make(map[string]map[string]struct{}),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers an asset, replacing any asset with the same id.
//
// The asset is validated before any index is touched, so a rejected add
// leaves the store unchanged.
func (s *Store) Add(a ir.Asset) error {
	if a.ID == "" {
		return &ResolveError{Code: ErrCodeInvalid, Message: "asset id is required"}
	}
	if !ir.ValidAssetTypes[a.Type] {
		return &ResolveError{
			Code:    ErrCodeInvalid,
			Message: "unknown asset type " + string(a.Type),
			AssetID: a.ID,
		}
	}
	if a.Type == ir.AssetPrefab && (a.Prefab == nil || (a.Prefab.Template == nil && len(a.Prefab.Variants) == 0)) {
		return &ResolveError{Code: ErrCodeInvalid, Message: "prefab asset has no template", AssetID: a.ID}
	}

	if _, exists := s.assets[a.ID]; exists {
		s.unindex(a.ID)
	}

	a = a.Clone()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	s.assets[a.ID] = a
	s.index(a)
	return nil
}

// AddAll registers every asset in order, stopping at the first rejected one.
func (s *Store) AddAll(list []ir.Asset) error {
	for _, a := range list {
		if err := s.Add(a); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes an asset and its index entries. It reports whether the
// asset existed.
func (s *Store) Remove(id string) bool {
	if _, ok := s.assets[id]; !ok {
		return false
	}
	s.unindex(id)
	delete(s.assets, id)
	return true
}

func (s *Store) index(a ir.Asset) {
	if a.Path != "" {
		s.byPath[a.Path] = a.ID
	}
	if s.byType[a.Type] == nil {
		s.byType[a.Type] = make(map[string]struct{})
	}
	s.byType[a.Type][a.ID] = struct{}{}
	for _, tag := range a.Tags {
		if s.byTag[tag] == nil {
			s.byTag[tag] = make(map[string]struct{})
		}
		s.byTag[tag][a.ID] = struct{}{}
	}
}

func (s *Store) unindex(id string) {
	old := s.assets[id]
	if old.Path != "" && s.byPath[old.Path] == id {
		delete(s.byPath, old.Path)
	}
	if set := s.byType[old.Type]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(s.byType, old.Type)
		}
	}
	for _, tag := range old.Tags {
		if set := s.byTag[tag]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(s.byTag, tag)
			}
		}
	}
}

// Get returns a copy of the asset with the given id.
func (s *Store) Get(id string) (ir.Asset, bool) {
	a, ok := s.assets[id]
	if !ok {
		return ir.Asset{}, false
	}
	return a.Clone(), true
}

// Has reports whether an asset with the id is registered.
func (s *Store) Has(id string) bool {
	_, ok := s.assets[id]
	return ok
}

// ByPath returns a copy of the asset registered under path.
func (s *Store) ByPath(path string) (ir.Asset, bool) {
	id, ok := s.byPath[path]
	if !ok {
		return ir.Asset{}, false
	}
	return s.Get(id)
}

// ByType returns copies of all assets of type t, ordered by id.
func (s *Store) ByType(t ir.AssetType) []ir.Asset {
	return s.collect(s.byType[t])
}

// ByTag returns copies of all assets carrying tag, ordered by id.
func (s *Store) ByTag(tag string) []ir.Asset {
	return s.collect(s.byTag[tag])
}

// List returns copies of every asset, ordered by id.
func (s *Store) List() []ir.Asset {
	out := make([]ir.Asset, 0, len(s.assets))
	for _, id := range ir.SortedKeys(s.assets) {
		out = append(out, s.assets[id].Clone())
	}
	return out
}

// Len returns the number of registered assets.
func (s *Store) Len() int {
	return len(s.assets)
}

// Search returns assets whose id, name, description or one of whose tags
// contains query, case-insensitively. An empty query matches everything.
func (s *Store) Search(query string) []ir.Asset {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []ir.Asset
	for _, a := range s.List() {
		if q == "" || matches(a, q) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a ir.Asset, q string) bool {
	if strings.Contains(strings.ToLower(a.ID), q) ||
		strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	return slices.ContainsFunc(a.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}

func (s *Store) collect(set map[string]struct{}) []ir.Asset {
	if len(set) == 0 {
		return nil
	}
	out := make([]ir.Asset, 0, len(set))
	for _, id := range ir.SortedKeys(set) {
		out = append(out, s.assets[id].Clone())
	}
	return out
}
