package util

import "reflect"

// seenSet tracks originals already being copied within a single DeepCopy
// call, keyed by the pointer identity of maps, slices, and pointers. It maps
// each original to its (possibly still partial) copy so cyclic structures
// terminate.
type seenSet map[uintptr]interface{}

// DeepCopy returns a deep copy of src. It is safe for cyclic data and uses a
// fast path for the snapshot shapes the store traffics in (string-keyed maps,
// interface slices, primitives), falling back to reflection for anything else.
func DeepCopy(src interface{}) interface{} {
	if src == nil {
		return nil
	}
	return copyAny(src, make(seenSet))
}

// CopySnapshot deep-copies a snapshot map. A nil input yields an empty map so
// callers can always range and assign.
func CopySnapshot(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return map[string]interface{}{}
	}
	out, _ := DeepCopy(src).(map[string]interface{})
	if out == nil {
		out = map[string]interface{}{}
	}
	return out
}

func copyAny(src interface{}, seen seenSet) interface{} {
	if src == nil {
		return nil
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr:
		if cpy, ok := seen[rv.Pointer()]; ok {
			// Already copying this object further up the stack.
			return cpy
		}
	case reflect.Func:
		// Functions are opaque handles; share the reference.
		return src
	}

	switch v := src.(type) {
	case map[string]interface{}:
		cpy := make(map[string]interface{}, len(v))
		seen[rv.Pointer()] = cpy
		for key, value := range v {
			cpy[key] = copyAny(value, seen)
		}
		return cpy

	case []interface{}:
		cpy := make([]interface{}, len(v), cap(v))
		seen[rv.Pointer()] = cpy
		for i, value := range v {
			cpy[i] = copyAny(value, seen)
		}
		return cpy

	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, complex64, complex128:
		return v

	default:
		return copyReflect(rv, seen)
	}
}

// copyReflect handles types outside the fast path: typed maps and slices,
// structs, arrays, and pointers.
func copyReflect(original reflect.Value, seen seenSet) interface{} {
	if !original.IsValid() {
		return nil
	}

	switch original.Kind() {
	case reflect.Ptr:
		if original.IsNil() {
			return nil
		}
		addr := original.Pointer()
		if cpy, ok := seen[addr]; ok {
			return cpy
		}
		newPtr := reflect.New(original.Type().Elem())
		seen[addr] = newPtr.Interface()
		if elem := copyAny(original.Elem().Interface(), seen); elem != nil {
			newPtr.Elem().Set(reflect.ValueOf(elem))
		}
		return newPtr.Interface()

	case reflect.Interface:
		if original.IsNil() {
			return nil
		}
		return copyAny(original.Elem().Interface(), seen)

	case reflect.Slice:
		if original.IsNil() {
			return nil
		}
		cpy := reflect.MakeSlice(original.Type(), original.Len(), original.Cap())
		seen[original.Pointer()] = cpy.Interface()
		for i := 0; i < original.Len(); i++ {
			if elem := copyAny(original.Index(i).Interface(), seen); elem != nil {
				cpy.Index(i).Set(reflect.ValueOf(elem))
			}
		}
		return cpy.Interface()

	case reflect.Map:
		if original.IsNil() {
			return nil
		}
		cpy := reflect.MakeMapWithSize(original.Type(), original.Len())
		seen[original.Pointer()] = cpy.Interface()
		for _, key := range original.MapKeys() {
			ck := copyAny(key.Interface(), seen)
			cv := copyAny(original.MapIndex(key).Interface(), seen)
			cpy.SetMapIndex(reflect.ValueOf(ck), reflect.ValueOf(cv))
		}
		return cpy.Interface()

	case reflect.Struct:
		cpy := reflect.New(original.Type()).Elem()
		for i := 0; i < original.NumField(); i++ {
			if !cpy.Field(i).CanSet() {
				continue
			}
			if fieldCopy := copyAny(original.Field(i).Interface(), seen); fieldCopy != nil {
				cpy.Field(i).Set(reflect.ValueOf(fieldCopy))
			}
		}
		return cpy.Interface()

	case reflect.Array:
		cpy := reflect.New(original.Type()).Elem()
		for i := 0; i < original.Len(); i++ {
			if elem := copyAny(original.Index(i).Interface(), seen); elem != nil {
				cpy.Index(i).Set(reflect.ValueOf(elem))
			}
		}
		return cpy.Interface()

	default:
		return original.Interface()
	}
}
