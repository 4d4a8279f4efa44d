// Package utils contains small generic helpers.
package utils

// OmitKeys returns a copy of m without keys.
func OmitKeys[M ~map[K]V, K comparable, V any](m M, keys ...K) M {
	drop := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := make(M, len(m))
	for k, v := range m {
		if _, ok := drop[k]; !ok {
			out[k] = v
		}
	}
	return out
}
