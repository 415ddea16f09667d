package store

import (
	"context"
	"fmt"

	"github.com/roach88/scenekit/internal/ir"
)

// WriteManifest stores a compiled manifest under its content hash.
// Uses ON CONFLICT(hash) DO NOTHING: storing the same manifest twice keeps
// the first row and reports inserted=false.
func (s *Store) WriteManifest(ctx context.Context, m *ir.Manifest, seq int64) (hash string, inserted bool, err error) {
	hash, err = ir.ManifestHash(m)
	if err != nil {
		return "", false, fmt.Errorf("write manifest: %w", err)
	}
	body, err := marshalText("manifest", m)
	if err != nil {
		return "", false, fmt.Errorf("write manifest: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO manifests
		(hash, manifest_id, name, version, body, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		hash,
		m.ID,
		m.Name,
		m.Version,
		body,
		seq,
	)
	if err != nil {
		return "", false, fmt.Errorf("write manifest: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write manifest: rows affected: %w", err)
	}
	return hash, rowsAffected > 0, nil
}

// WriteNavigation appends a journal row and returns its id.
// A second row for the same (session, seq) is rejected by the UNIQUE
// constraint.
func (s *Store) WriteNavigation(ctx context.Context, nav Navigation) (int64, error) {
	params, err := marshalStrings("params", nav.Params)
	if err != nil {
		return 0, fmt.Errorf("write navigation: %w", err)
	}
	query, err := marshalStrings("query", nav.Query)
	if err != nil {
		return 0, fmt.Errorf("write navigation: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO navigations
		(session, seq, path, route_path, scene_id, params, query)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		nav.Session,
		nav.Seq,
		nav.Path,
		nav.RoutePath,
		nav.SceneID,
		params,
		query,
	)
	if err != nil {
		return 0, fmt.Errorf("write navigation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write navigation: last insert id: %w", err)
	}
	return id, nil
}

// WriteInstance inserts or replaces a prefab instance. Updating an instance
// keeps its id, so the row is overwritten in place with the new seq.
func (s *Store) WriteInstance(ctx context.Context, rec InstanceRecord) error {
	if rec.Node == nil {
		return fmt.Errorf("write instance %q: nil node", rec.ID)
	}
	params, err := marshalText("parameters", ir.CloneMap(rec.Parameters))
	if err != nil {
		return fmt.Errorf("write instance: %w", err)
	}
	if rec.Parameters == nil {
		params = "{}"
	}
	node, err := marshalText("node", rec.Node)
	if err != nil {
		return fmt.Errorf("write instance: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prefab_instances
		(id, prefab_id, variant_id, parameters, node, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			prefab_id = excluded.prefab_id,
			variant_id = excluded.variant_id,
			parameters = excluded.parameters,
			node = excluded.node,
			seq = excluded.seq
	`,
		rec.ID,
		rec.PrefabID,
		rec.VariantID,
		params,
		node,
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write instance: %w", err)
	}
	return nil
}

// DeleteInstance removes a prefab instance and reports whether it existed.
func (s *Store) DeleteInstance(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prefab_instances WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete instance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete instance: rows affected: %w", err)
	}
	return n > 0, nil
}
