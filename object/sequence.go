package object

// Sequence is a symbol sequence compared by alignment cost.
type Sequence struct {
	ID   string
	Text string
}

// NewSequence constructs a sequence payload.
func NewSequence(id, text string) *Sequence { return &Sequence{ID: id, Text: text} }

// Locator returns the sequence identifier.
func (s *Sequence) Locator() string { return s.ID }

// DataEqual reports whether other is a sequence with identical symbols.
func (s *Sequence) DataEqual(other Object) bool {
	o, ok := other.(*Sequence)
	return ok && o.Text == s.Text
}

func (s *Sequence) String() string { return s.ID + ":" + s.Text }
