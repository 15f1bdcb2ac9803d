package config

// DeepMerge merges override into base and returns a new map. Nested
// string-keyed maps merge key-by-key; every other value (scalars, lists)
// from the override replaces the base value wholesale. Neither input is
// modified.
func DeepMerge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		existing, ok := result[k]
		if !ok {
			result[k] = v
			continue
		}

		existingMap, existingIsMap := asStringMap(existing)
		overrideMap, overrideIsMap := asStringMap(v)
		if existingIsMap && overrideIsMap {
			result[k] = DeepMerge(existingMap, overrideMap)
		} else {
			result[k] = v
		}
	}

	return result
}

// asStringMap normalizes the map shapes yaml.v3 produces. Documents decode
// to map[string]any, but nested nodes can surface as map[any]any when keys
// are not plain strings.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}
