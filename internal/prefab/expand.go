package prefab

import (
	"github.com/roach88/scenekit/internal/ir"
)

// Expand resolves an authored node that references a prefab.
//
// The node's prefabVariantId and prefabParameters drive the pipeline and its
// id scopes the template's descendants. The result keeps the authored id,
// prefabId, prefabVariantId and prefabParameters; its components are the
// template's followed by the authored node's, so authored components win on
// conflicting keys. The template's children replace any authored children.
//
// Expansion is not recorded as an instance. A node without a prefabId is
// returned as a clone.
func (e *Engine) Expand(node *ir.Node) (*ir.Node, error) {
	if node == nil || !node.IsPrefabRef() {
		return node.Clone(), nil
	}
	p, ok := e.prefabs[node.PrefabID]
	if !ok {
		return nil, &Error{Code: ErrCodePrefabNotFound, Message: "prefab not registered", PrefabID: node.PrefabID}
	}

	inst, err := e.build(&p, node.ID, node.PrefabVariantID, node.PrefabParameters)
	if err != nil {
		return nil, err
	}

	out := inst.Instance
	out.ID = node.ID
	out.PrefabID = node.PrefabID
	out.PrefabVariantID = node.PrefabVariantID
	out.PrefabParameters = ir.CloneMap(node.PrefabParameters)

	components := make([]ir.Component, 0, len(out.Components)+len(node.Components))
	components = append(components, out.Components...)
	for _, c := range node.Components {
		components = append(components, c.Clone())
	}
	if len(components) > 0 {
		out.Components = components
	}
	return out, nil
}
