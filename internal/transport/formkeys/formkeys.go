// Package formkeys parses flat form keys that use the nested bracket
// convention, e.g. hours[5][10] or positions[0][product_name].
package formkeys

import (
	"net/url"
	"sort"
	"strings"
)

// Split returns the bracketed segments of key when it starts with prefix.
// Split("hours[5][10]", "hours") yields ["5", "10"], true.
func Split(key, prefix string) ([]string, bool) {
	if !strings.HasPrefix(key, prefix+"[") {
		return nil, false
	}
	rest := key[len(prefix):]

	var segments []string
	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return segments, true
}

// Field is one value addressed by its bracket segments.
type Field struct {
	Segments []string
	Value    string
}

// Collect returns every field under prefix with exactly depth segments,
// sorted by key so results are deterministic. When a key repeats, the last
// value wins.
func Collect(values url.Values, prefix string, depth int) []Field {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []Field
	for _, k := range keys {
		segs, ok := Split(k, prefix)
		if !ok || len(segs) != depth {
			continue
		}
		vs := values[k]
		if len(vs) == 0 {
			continue
		}
		fields = append(fields, Field{Segments: segs, Value: vs[len(vs)-1]})
	}
	return fields
}
