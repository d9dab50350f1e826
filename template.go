package fncache

import (
	"errors"
	"fmt"
	"strings"
)

var errBadTemplate = errors.New("fncache: malformed key template")

type tmplPart struct {
	lit   string
	param string // non-empty for a placeholder
}

// KeyTemplate renders logical keys such as "user:settings:{user_id}" from
// named parameters. "{{" and "}}" stand for literal braces.
type KeyTemplate struct {
	raw    string
	parts  []tmplPart
	params []string
}

// NewKeyTemplate parses s and records its placeholders.
func NewKeyTemplate(s string) (KeyTemplate, error) {
	t := KeyTemplate{raw: s}
	var lit strings.Builder
	seen := map[string]bool{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return KeyTemplate{}, fmt.Errorf("%w %q: unclosed '{' at %d", errBadTemplate, s, i)
			}
			name := strings.TrimSpace(s[i+1 : i+1+end])
			if name == "" || strings.ContainsRune(name, '{') {
				return KeyTemplate{}, fmt.Errorf("%w %q: bad placeholder at %d", errBadTemplate, s, i)
			}
			if lit.Len() > 0 {
				t.parts = append(t.parts, tmplPart{lit: lit.String()})
				lit.Reset()
			}
			t.parts = append(t.parts, tmplPart{param: name})
			if !seen[name] {
				seen[name] = true
				t.params = append(t.params, name)
			}
			i += end + 1
		case c == '}':
			return KeyTemplate{}, fmt.Errorf("%w %q: stray '}' at %d", errBadTemplate, s, i)
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		t.parts = append(t.parts, tmplPart{lit: lit.String()})
	}
	return t, nil
}

// MustKeyTemplate is NewKeyTemplate that panics on a malformed template.
func MustKeyTemplate(s string) KeyTemplate {
	t, err := NewKeyTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t KeyTemplate) String() string { return t.raw }

// Params lists placeholder names in first-appearance order.
func (t KeyTemplate) Params() []string {
	out := make([]string, len(t.params))
	copy(out, t.params)
	return out
}

// Render substitutes every placeholder with fmt.Sprint of its value.
// A missing parameter yields *MissingParamError. Extra parameters are
// ignored.
func (t KeyTemplate) Render(params map[string]any) (string, error) {
	var b strings.Builder
	b.Grow(len(t.raw))
	for _, p := range t.parts {
		if p.param == "" {
			b.WriteString(p.lit)
			continue
		}
		v, ok := params[p.param]
		if !ok {
			return "", &MissingParamError{Template: t.raw, Param: p.param}
		}
		fmt.Fprint(&b, v)
	}
	return b.String(), nil
}
