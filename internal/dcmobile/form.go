package dcmobile

import (
	"net/url"
	"strings"
)

// FieldMap is an ordered set of form fields as scraped from a page. It cannot
// be changed once extracted; use Mutable to build a submission from it.
type FieldMap struct {
	keys   []string
	values map[string]string
}

func newFieldMap(pairs ...[2]string) FieldMap {
	f := FieldMap{values: map[string]string{}}
	for _, p := range pairs {
		f.add(p[0], p[1])
	}
	return f
}

// add keeps the first occurrence of a key, like a browser keeps the first
// element of a getElementById lookup.
func (f *FieldMap) add(key, value string) {
	if _, ok := f.values[key]; ok {
		return
	}
	f.keys = append(f.keys, key)
	f.values[key] = value
}

func (f FieldMap) Get(key string) string {
	return f.values[key]
}

func (f FieldMap) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f FieldMap) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f FieldMap) Len() int {
	return len(f.keys)
}

func (f FieldMap) Mutable() *Form {
	form := &Form{values: make(map[string]string, len(f.keys))}
	for _, k := range f.keys {
		form.Set(k, f.values[k])
	}
	return form
}

// Form is an ordered field set under construction. Later writes win.
type Form struct {
	keys   []string
	values map[string]string
}

func NewForm() *Form {
	return &Form{values: map[string]string{}}
}

func (f *Form) Set(key, value string) *Form {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// SetDefault sets key only when it is missing or empty.
func (f *Form) SetDefault(key, value string) *Form {
	if f.values[key] == "" {
		f.Set(key, value)
	}
	return f
}

func (f *Form) Merge(fields map[string]string) *Form {
	for k, v := range fields {
		f.Set(k, v)
	}
	return f
}

func (f *Form) Delete(keys ...string) *Form {
	for _, key := range keys {
		if _, ok := f.values[key]; !ok {
			continue
		}
		delete(f.values, key)
		for i, k := range f.keys {
			if k == key {
				f.keys = append(f.keys[:i], f.keys[i+1:]...)
				break
			}
		}
	}
	return f
}

func (f *Form) Get(key string) string {
	return f.values[key]
}

func (f *Form) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *Form) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f *Form) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Encode renders the form as urlencoded text in insertion order.
func (f *Form) Encode() string {
	var sb strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(f.values[k]))
	}
	return sb.String()
}
