package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadManifest retrieves a manifest by content hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadManifest(ctx context.Context, hash string) (ManifestRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, manifest_id, name, version, body, seq
		FROM manifests
		WHERE hash = ?
	`, hash)
	return scanManifest(row)
}

// LatestManifest returns the most recently stored manifest with the given
// manifest id. Returns sql.ErrNoRows if none exists.
func (s *Store) LatestManifest(ctx context.Context, manifestID string) (ManifestRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, manifest_id, name, version, body, seq
		FROM manifests
		WHERE manifest_id = ?
		ORDER BY seq DESC, hash COLLATE BINARY DESC
		LIMIT 1
	`, manifestID)
	return scanManifest(row)
}

// ReadManifests returns every stored manifest ordered by seq ASC, hash ASC.
func (s *Store) ReadManifests(ctx context.Context) ([]ManifestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hash, manifest_id, name, version, body, seq
		FROM manifests
		ORDER BY seq ASC, hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query manifests: %w", err)
	}
	defer rows.Close()

	records := []ManifestRecord{}
	for rows.Next() {
		rec, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manifests: %w", err)
	}
	return records, nil
}

// ReadSession returns a session's journal ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) for an unknown session.
func (s *Store) ReadSession(ctx context.Context, session string) ([]Navigation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, seq, path, route_path, scene_id, params, query
		FROM navigations
		WHERE session = ?
		ORDER BY seq ASC, id ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query navigations: %w", err)
	}
	defer rows.Close()

	navs := []Navigation{}
	for rows.Next() {
		nav, err := scanNavigation(rows)
		if err != nil {
			return nil, err
		}
		navs = append(navs, nav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate navigations: %w", err)
	}
	return navs, nil
}

// ListSessions returns all distinct journal sessions in alphabetical order.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT session FROM navigations
		ORDER BY session COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var session string
		if err := rows.Scan(&session); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadInstance retrieves a prefab instance by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadInstance(ctx context.Context, id string) (InstanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, prefab_id, variant_id, parameters, node, seq
		FROM prefab_instances
		WHERE id = ?
	`, id)
	return scanInstance(row)
}

// ReadInstances returns stored instances ordered by seq ASC, id ASC.
// A non-empty prefabID restricts the result to instances of that prefab.
func (s *Store) ReadInstances(ctx context.Context, prefabID string) ([]InstanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prefab_id, variant_id, parameters, node, seq
		FROM prefab_instances
		WHERE ? = '' OR prefab_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, prefabID, prefabID)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	records := []InstanceRecord{}
	for rows.Next() {
		rec, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest seq used in any table.
// Used to resume the logical clock after a restart.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	for _, table := range []string{"manifests", "navigations", "prefab_instances"} {
		var seq int64
		err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) FROM %s", table),
		).Scan(&seq)
		if err != nil {
			return 0, fmt.Errorf("get last seq from %s: %w", table, err)
		}
		maxSeq = max(maxSeq, seq)
	}
	return maxSeq, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanManifest(row scanner) (ManifestRecord, error) {
	var rec ManifestRecord
	var body string
	if err := row.Scan(&rec.Hash, &rec.ManifestID, &rec.Name, &rec.Version, &body, &rec.Seq); err != nil {
		if err == sql.ErrNoRows {
			return rec, err
		}
		return rec, fmt.Errorf("scan manifest: %w", err)
	}
	m, err := unmarshalManifest(body)
	if err != nil {
		return rec, err
	}
	rec.Manifest = m
	return rec, nil
}

func scanNavigation(row scanner) (Navigation, error) {
	var nav Navigation
	var params, query string
	if err := row.Scan(
		&nav.ID, &nav.Session, &nav.Seq, &nav.Path,
		&nav.RoutePath, &nav.SceneID, &params, &query,
	); err != nil {
		return nav, fmt.Errorf("scan navigation: %w", err)
	}
	var err error
	if nav.Params, err = unmarshalStrings("params", params); err != nil {
		return nav, err
	}
	if nav.Query, err = unmarshalStrings("query", query); err != nil {
		return nav, err
	}
	return nav, nil
}

func scanInstance(row scanner) (InstanceRecord, error) {
	var rec InstanceRecord
	var params, node string
	if err := row.Scan(&rec.ID, &rec.PrefabID, &rec.VariantID, &params, &node, &rec.Seq); err != nil {
		if err == sql.ErrNoRows {
			return rec, err
		}
		return rec, fmt.Errorf("scan instance: %w", err)
	}
	var err error
	if rec.Parameters, err = unmarshalParameters(params); err != nil {
		return rec, err
	}
	if rec.Node, err = unmarshalNode(node); err != nil {
		return rec, err
	}
	return rec, nil
}
