package pagination

import "strings"

type ProjectionKind int

const (
	ProjectNone ProjectionKind = iota
	ProjectFields
	ProjectRelations
)

// Projection is either a set of picked fields or a set of relations to
// preload, never both.
type Projection struct {
	Kind  ProjectionKind
	Names []string
}

// ResolveProjection gives pick precedence: when both are present populate is
// dropped. Pick is whitespace separated, populate accepts commas as well.
func ResolveProjection(pick, populate string) Projection {
	if fields := strings.Fields(pick); len(fields) > 0 {
		return Projection{Kind: ProjectFields, Names: fields}
	}

	relations := strings.FieldsFunc(populate, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(relations) > 0 {
		return Projection{Kind: ProjectRelations, Names: relations}
	}

	return Projection{Kind: ProjectNone}
}
