package schema

import "gasdoc/internal/domain"

// Transform is the post-processing shape bound to a document type. The concrete
// variants are Identity and Mapping; consumers switch over them exhaustively.
type Transform interface {
	Kind() domain.TransformKind
	transform()
}

// Identity returns the validated record unchanged.
type Identity struct{}

func (Identity) Kind() domain.TransformKind { return domain.TransformIdentity }
func (Identity) transform()                 {}

// SumCombine defines Output as the exact sum of Inputs.
type SumCombine struct {
	Output string
	Inputs []string
}

// Rename exposes From verbatim under the public name To.
type Rename struct {
	From string
	To   string
}

// Mapping projects a record onto a public shape made of sums and renames.
// RowRenames apply to every item of the row collection; row fields not named keep their names.
type Mapping struct {
	Sums       []SumCombine
	Renames    []Rename
	RowRenames []Rename
}

func (m Mapping) Kind() domain.TransformKind {
	if len(m.Sums) > 0 {
		return domain.TransformSumCombine
	}
	return domain.TransformRename
}

func (Mapping) transform() {}
