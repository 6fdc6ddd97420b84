package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Param is a single key/value pair of a Params payload.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered key/value payload. Unlike a map it keeps insertion
// order both in query strings and in JSON bodies.
type Params []Param

// Add appends a pair and returns the extended Params.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Encode renders p as a URL query string in insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(formatValue(kv.Value)))
	}
	return b.String()
}

// MarshalJSON renders p as a JSON object with keys in insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal param %q: %w", kv.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeQuery renders a request payload as a query string.
// Supported payloads are nil, Params, url.Values, map[string]string,
// map[string]any and a raw string (used as-is). Maps are encoded with sorted keys.
func EncodeQuery(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "", nil
	case Params:
		return v.Encode(), nil
	case url.Values:
		return v.Encode(), nil
	case map[string]string:
		vals := make(url.Values, len(v))
		for k, s := range v {
			vals.Set(k, s)
		}
		return vals.Encode(), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		p := make(Params, 0, len(keys))
		for _, k := range keys {
			p = p.Add(k, v[k])
		}
		return p.Encode(), nil
	case string:
		return strings.TrimPrefix(v, "?"), nil
	default:
		return "", fmt.Errorf("unsupported query payload %T", data)
	}
}

// EncodeForm renders a request payload as an application/x-www-form-urlencoded body.
func EncodeForm(data any) ([]byte, error) {
	q, err := EncodeQuery(data)
	if err != nil {
		return nil, err
	}
	return []byte(q), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
