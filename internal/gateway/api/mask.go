package api

import (
	"regexp"
	"strings"
)

const maskChar = "*"

var panRegex = regexp.MustCompile(`\b\d{12,19}\b`)

// MaskValue masks a sensitive value. Card numbers keep their last four
// digits, anything else is replaced entirely.
func MaskValue(v string) string {
	if v == "" {
		return v
	}
	if panRegex.MatchString(v) && len(v) == len(panRegex.FindString(v)) {
		return strings.Repeat(maskChar, len(v)-4) + v[len(v)-4:]
	}
	return strings.Repeat(maskChar, 3)
}

// MaskPANs masks every card-number-looking run of digits in s.
func MaskPANs(s string) string {
	return panRegex.ReplaceAllStringFunc(s, MaskValue)
}

// MaskFields returns a copy of data with the values of sensitive keys
// masked at any depth. Key matching ignores case.
func MaskFields(data map[string]interface{}, sensitive []string) map[string]interface{} {
	if data == nil {
		return nil
	}
	keys := make(map[string]struct{}, len(sensitive))
	for _, k := range sensitive {
		keys[strings.ToLower(k)] = struct{}{}
	}
	masked, _ := maskValue(data, keys).(map[string]interface{})
	return masked
}

func maskValue(v interface{}, keys map[string]struct{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			if _, ok := keys[strings.ToLower(k)]; ok {
				out[k] = maskScalar(inner)
				continue
			}
			out[k] = maskValue(inner, keys)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = maskValue(inner, keys)
		}
		return out
	default:
		return val
	}
}

func maskScalar(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return MaskValue(val)
	default:
		return strings.Repeat(maskChar, 3)
	}
}
