package history

import (
	"reflect"
	"sort"

	"github.com/rewind-labs/rewind/internal/util"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
)

// diffSnapshots computes the per-key change record transforming prev into
// next. Patches are emitted in sorted key order so serialized change records
// are stable across runs; values are deep-copied so the record stays valid
// after either snapshot is released.
func diffSnapshots(prev, next hist.Snapshot) hist.ChangeSet {
	var cs hist.ChangeSet

	keys := make([]string, 0, len(next))
	for k := range next {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		nv := next[k]
		ov, existed := prev[k]
		switch {
		case !existed:
			cs.Forward = append(cs.Forward, hist.Patch{Op: hist.PatchSet, Key: k, Value: util.DeepCopy(nv)})
			cs.Inverse = append(cs.Inverse, hist.Patch{Op: hist.PatchDelete, Key: k})
		case !reflect.DeepEqual(ov, nv):
			cs.Forward = append(cs.Forward, hist.Patch{Op: hist.PatchSet, Key: k, Value: util.DeepCopy(nv)})
			cs.Inverse = append(cs.Inverse, hist.Patch{Op: hist.PatchSet, Key: k, Value: util.DeepCopy(ov)})
		}
	}

	removed := make([]string, 0)
	for k := range prev {
		if _, kept := next[k]; !kept {
			removed = append(removed, k)
		}
	}
	sort.Strings(removed)

	for _, k := range removed {
		cs.Forward = append(cs.Forward, hist.Patch{Op: hist.PatchDelete, Key: k})
		cs.Inverse = append(cs.Inverse, hist.Patch{Op: hist.PatchSet, Key: k, Value: util.DeepCopy(prev[k])})
	}

	return cs
}
