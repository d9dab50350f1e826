package keyspace

// Scope selects which version registers take part in a physical key.
// The zero value is the global scope.
type Scope struct {
	subject string
	scoped  bool
}

// Global is the default scope.
func Global() Scope { return Scope{} }

// Subject scopes a key to one subject (usually a user id). Any string,
// including "", is a valid subject id.
func Subject(id string) Scope { return Scope{subject: id, scoped: true} }

// SubjectID reports the subject id and whether the scope has one.
func (s Scope) SubjectID() (string, bool) { return s.subject, s.scoped }

func (s Scope) String() string {
	if !s.scoped {
		return "global"
	}
	return "subject:" + s.subject
}
