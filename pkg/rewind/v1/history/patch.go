package history

// PatchOp identifies the effect of a single patch entry.
type PatchOp string

const (
	// PatchSet assigns Value to Key.
	PatchSet PatchOp = "set"
	// PatchDelete removes Key; Value is ignored.
	PatchDelete PatchOp = "delete"
)

// Patch is one top-level key change within a history entry. Values must be
// plain data (maps, slices, primitives) for the patch to survive
// serialization.
type Patch struct {
	Op    PatchOp     `json:"op" yaml:"op"`
	Key   string      `json:"key" yaml:"key"`
	Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// ChangeSet is the serialized change record for one history entry: the
// forward patches that produce the entry from its predecessor, and the
// inverse patches that recover the predecessor. Persisting the change sets
// together with the initial snapshot is sufficient to restore a session via
// Config.InitialPatches.
type ChangeSet struct {
	Forward []Patch `json:"forward" yaml:"forward"`
	Inverse []Patch `json:"inverse" yaml:"inverse"`
}

// ApplyTo applies the forward patches to snapshot, mutating it in place.
func (c ChangeSet) ApplyTo(snapshot Snapshot) {
	applyPatches(snapshot, c.Forward)
}

// RevertFrom applies the inverse patches to snapshot, mutating it in place.
func (c ChangeSet) RevertFrom(snapshot Snapshot) {
	applyPatches(snapshot, c.Inverse)
}

func applyPatches(snapshot Snapshot, patches []Patch) {
	for _, p := range patches {
		switch p.Op {
		case PatchSet:
			snapshot[p.Key] = p.Value
		case PatchDelete:
			delete(snapshot, p.Key)
		}
	}
}
