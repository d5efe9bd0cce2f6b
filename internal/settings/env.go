package settings

import "strings"

const envPrefix = "SYSGRAPH_SET_"

// FromEnv collects overrides from SYSGRAPH_SET_* variables. A double
// underscore separates sections and a single one becomes a dash, so
// SYSGRAPH_SET_CHART__FILL_ALPHA maps to chart.fill-alpha.
func FromEnv(environ []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		key := strings.ToLower(name[len(envPrefix):])
		key = strings.ReplaceAll(key, "__", ".")
		key = strings.ReplaceAll(key, "_", "-")
		if key == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Merge overlays scopes left to right; later scopes win.
func Merge(scopes ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, scope := range scopes {
		for k, v := range scope {
			out[k] = v
		}
	}
	return out
}
