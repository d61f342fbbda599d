package envfile

import "strings"

// Kind identifies the type of an Entry.
type Kind int

// Entry kinds.
const (
	KindEmpty Kind = iota
	KindComment
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindComment:
		return "comment"
	case KindVar:
		return "var"
	default:
		return "unknown"
	}
}

// Var is a single NAME=value assignment.
type Var struct {
	Name  string
	Value string
}

// String renders the variable the way it is written to disk.
func (v Var) String() string {
	return v.Name + "=" + v.Value
}

// Entry is one line of an environment file.
type Entry struct {
	Kind Kind
	// Var is set when Kind is KindVar.
	Var Var
	// Text is the comment body without the leading '#', set when Kind is KindComment.
	Text string
}

// VarEntry returns a variable entry.
func VarEntry(name, value string) Entry {
	return Entry{Kind: KindVar, Var: Var{Name: name, Value: value}}
}

// CommentEntry returns a comment entry.
func CommentEntry(text string) Entry {
	return Entry{Kind: KindComment, Text: text}
}

// EmptyEntry returns a blank line entry.
func EmptyEntry() Entry {
	return Entry{Kind: KindEmpty}
}

// IsVar reports whether the entry is a variable.
func (e Entry) IsVar() bool {
	return e.Kind == KindVar
}

// SameAs reports whether two entries have the same identity.
// Variables are identified by name, comments by text; blank lines are all alike.
func (e Entry) SameAs(o Entry) bool {
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case KindVar:
		return e.Var.Name == o.Var.Name
	case KindComment:
		return e.Text == o.Text
	default:
		return true
	}
}

// String renders the entry as a single line including the trailing newline.
func (e Entry) String() string {
	var b strings.Builder
	e.writeTo(&b)
	return b.String()
}

func (e Entry) writeTo(b *strings.Builder) {
	switch e.Kind {
	case KindVar:
		b.WriteString(e.Var.Name)
		b.WriteByte('=')
		b.WriteString(e.Var.Value)
	case KindComment:
		b.WriteByte('#')
		b.WriteString(e.Text)
	}
	b.WriteByte('\n')
}
