package settings

import (
	"strings"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

type Matcher func(string) bool
type ApplyFunc func(key, val string) error

type Handler struct {
	Match Matcher
	Apply ApplyFunc
}

type Applier struct {
	handlers []Handler
}

func New(handlers ...Handler) Applier {
	return Applier{handlers: handlers}
}

// ApplyAll routes each key to the first matching handler and returns the
// keys nobody claimed.
func (a Applier) ApplyAll(settings map[string]string) (map[string]string, error) {
	if len(settings) == 0 || len(a.handlers) == 0 {
		return settings, nil
	}
	left := make(map[string]string)
	for k, v := range settings {
		key := normalizeKey(k)
		if key == "" {
			continue
		}
		applied := false
		for _, h := range a.handlers {
			if h.Match != nil && h.Match(key) {
				if h.Apply != nil {
					if err := h.Apply(key, v); err != nil {
						return nil, errdef.Wrap(errdef.CodeConfig, err, "setting %s", key)
					}
				}
				applied = true
				break
			}
		}
		if !applied {
			left[key] = v
		}
	}
	return left, nil
}

func PrefixMatcher(prefixes ...string) Matcher {
	return func(key string) bool {
		lower := normalizeKey(key)
		for _, p := range prefixes {
			if strings.HasPrefix(lower, normalizeKey(p)) {
				return true
			}
		}
		return false
	}
}

func ExactMatcher(keys ...string) Matcher {
	return func(key string) bool {
		lower := normalizeKey(key)
		for _, k := range keys {
			if lower == normalizeKey(k) {
				return true
			}
		}
		return false
	}
}

// ParseAssignments splits "key=value" pairs as given to repeated --set flags.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		key = normalizeKey(key)
		if !ok || key == "" {
			return nil, errdef.New(errdef.CodeConfig, "invalid setting %q, want key=value", pair)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
