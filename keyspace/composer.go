package keyspace

import (
	"strconv"
	"strings"
)

// Composer renders physical keys from a logical key, a scope and the
// current registers.
type Composer struct {
	Prefix   string
	Versions *Versions
	// SubjectFollowsGlobal makes subject-scoped keys embed the live global
	// register, so a global bump also invalidates them. When false they embed
	// 0 in its place and only a subject bump reaches them.
	SubjectFollowsGlobal bool
}

func NewComposer(prefix string, v *Versions, subjectFollowsGlobal bool) *Composer {
	if v == nil {
		v = NewVersions()
	}
	return &Composer{Prefix: prefix, Versions: v, SubjectFollowsGlobal: subjectFollowsGlobal}
}

func (c *Composer) Key(logical string, scope Scope) string {
	id, scoped := scope.SubjectID()

	var g uint64
	if !scoped || c.SubjectFollowsGlobal {
		g = c.Versions.Global()
	}

	var b strings.Builder
	b.Grow(len(c.Prefix) + len(logical) + 20)
	b.WriteString(c.Prefix)
	b.WriteString(logical)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(g, 16))
	if scoped {
		b.WriteByte('_')
		b.WriteString(strconv.FormatUint(c.Versions.Subject(id), 16))
	}
	return b.String()
}
