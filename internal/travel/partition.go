// Package travel implements the time-travel middleware core: it partitions a
// combined state object into tracked data and fixed behavior, translates the
// store's update calling conventions into the history engine's commit
// protocol, and republishes engine snapshots back into the host container.
package travel

import "reflect"

// Partition splits a combined state object into its data and behavior
// subsets. The single policy decision of what gets time-traveled lives here:
// a value is behavior exactly when it is invokable (reflect.Kind Func);
// everything else, nil included, is data. Key coverage is total and
// disjoint. Pure function, no side effects.
func Partition(combined map[string]interface{}) (data, behavior map[string]interface{}) {
	data = make(map[string]interface{}, len(combined))
	behavior = make(map[string]interface{})

	for key, value := range combined {
		if isCallable(value) {
			behavior[key] = value
		} else {
			data[key] = value
		}
	}
	return data, behavior
}

// isCallable is the capability test backing the partition policy. Alternate
// policies (schema-declared key lists, for example) can replace Partition
// without touching the dispatcher or bridge.
func isCallable(value interface{}) bool {
	if value == nil {
		return false
	}
	return reflect.ValueOf(value).Kind() == reflect.Func
}
