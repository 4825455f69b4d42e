package api

import "maps"

// Args represents a free-form map of named values. Step configs, execution
// contexts, and handler outputs are all Args; the engine never validates
// their shape
type Args map[string]any

// Set returns a new Args with the specified name-value pair added
func (a Args) Set(name string, value any) Args {
	if a == nil {
		return Args{name: value}
	}
	res := maps.Clone(a)
	res[name] = value
	return res
}

// Merge returns a new Args with all pairs from other applied over a
func (a Args) Merge(other Args) Args {
	if len(other) == 0 {
		return a
	}
	res := maps.Clone(a)
	if res == nil {
		res = make(Args, len(other))
	}
	maps.Copy(res, other)
	return res
}

// Clone returns a shallow copy of the Args
func (a Args) Clone() Args {
	if a == nil {
		return Args{}
	}
	return maps.Clone(a)
}

// GetString retrieves a string value, returning defaultValue if the key is
// missing or holds a different type
func (a Args) GetString(name, defaultValue string) string {
	val, ok := a[name]
	if !ok {
		return defaultValue
	}
	str, ok := val.(string)
	if !ok {
		return defaultValue
	}
	return str
}

// GetBool retrieves a boolean value, returning defaultValue if the key is
// missing or holds a different type
func (a Args) GetBool(name string, defaultValue bool) bool {
	val, ok := a[name]
	if !ok {
		return defaultValue
	}
	b, ok := val.(bool)
	if !ok {
		return defaultValue
	}
	return b
}

// GetInt retrieves an integer value, returning defaultValue if the key is
// missing or holds a non-numeric type. JSON decoding produces float64, so
// both forms are accepted
func (a Args) GetInt(name string, defaultValue int) int {
	val, ok := a[name]
	if !ok {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// GetArgs retrieves a nested Args value, returning nil if the key is missing
// or holds a different type
func (a Args) GetArgs(name string) Args {
	val, ok := a[name]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case Args:
		return v
	case map[string]any:
		return v
	default:
		return nil
	}
}
