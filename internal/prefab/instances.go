package prefab

import (
	"slices"

	"github.com/roach88/scenekit/internal/ir"
)

func (e *Engine) record(inst ir.PrefabInstance) {
	stored := inst
	stored.Instance = inst.Instance.Clone()
	stored.Parameters = ir.CloneMap(inst.Parameters)
	if _, exists := e.instances[inst.ID]; !exists {
		e.order = append(e.order, inst.ID)
	}
	e.instances[inst.ID] = stored
}

func copyInstance(inst ir.PrefabInstance) ir.PrefabInstance {
	inst.Instance = inst.Instance.Clone()
	inst.Parameters = ir.CloneMap(inst.Parameters)
	return inst
}

// GetInstance returns a copy of the instance record.
func (e *Engine) GetInstance(id string) (ir.PrefabInstance, bool) {
	inst, ok := e.instances[id]
	if !ok {
		return ir.PrefabInstance{}, false
	}
	return copyInstance(inst), true
}

// Instances returns copies of all instance records in creation order.
func (e *Engine) Instances() []ir.PrefabInstance {
	out := make([]ir.PrefabInstance, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, copyInstance(e.instances[id]))
	}
	return out
}

// InstancesOf returns the instances of one prefab in creation order.
func (e *Engine) InstancesOf(prefabID string) []ir.PrefabInstance {
	var out []ir.PrefabInstance
	for _, id := range e.order {
		if inst := e.instances[id]; inst.PrefabID == prefabID {
			out = append(out, copyInstance(inst))
		}
	}
	return out
}

// UpdateInstance merges params over the instance's parameters and re-runs
// the pipeline with the same prefab, variant and id. CreatedAt is kept.
// On failure the existing record is left as it was.
func (e *Engine) UpdateInstance(id string, params map[string]any) (*ir.PrefabInstance, error) {
	inst, err := e.RebuildInstance(id, params)
	if err != nil {
		return nil, err
	}
	e.record(*inst)
	return inst, nil
}

// RebuildInstance is UpdateInstance without the bookkeeping: the record is
// untouched until CommitInstance stores the result.
func (e *Engine) RebuildInstance(id string, params map[string]any) (*ir.PrefabInstance, error) {
	old, ok := e.instances[id]
	if !ok {
		return nil, &Error{Code: ErrCodeNotFound, Message: "instance not found", InstanceID: id}
	}
	p, ok := e.prefabs[old.PrefabID]
	if !ok {
		return nil, &Error{
			Code:       ErrCodePrefabNotFound,
			Message:    "prefab not registered",
			PrefabID:   old.PrefabID,
			InstanceID: id,
		}
	}

	merged := ir.CloneMap(old.Parameters)
	if merged == nil {
		merged = make(map[string]any, len(params))
	}
	for k, v := range params {
		merged[k] = v
	}

	inst, err := e.build(&p, id, old.VariantID, merged)
	if err != nil {
		return nil, err
	}
	inst.CreatedAt = old.CreatedAt
	return inst, nil
}

// CommitInstance stores a rebuilt instance over its existing record.
func (e *Engine) CommitInstance(inst ir.PrefabInstance) error {
	if _, ok := e.instances[inst.ID]; !ok {
		return &Error{Code: ErrCodeNotFound, Message: "instance not found", InstanceID: inst.ID}
	}
	e.record(inst)
	return nil
}

// RemoveInstance drops the instance record. It reports whether it existed.
func (e *Engine) RemoveInstance(id string) bool {
	if _, ok := e.instances[id]; !ok {
		return false
	}
	delete(e.instances, id)
	e.order = slices.DeleteFunc(e.order, func(o string) bool { return o == id })
	return true
}

// Len returns the number of recorded instances.
func (e *Engine) Len() int {
	return len(e.instances)
}
