package table

import "strings"

// ColumnPath is a column name split into its relation hops and the leaf field.
// "user.team.name" has Segments [user team] and Leaf "name".
type ColumnPath struct {
	Segments []string
	Leaf     string
}

func ParsePath(name string) ColumnPath {
	parts := strings.Split(strings.TrimSpace(name), ".")
	return ColumnPath{
		Segments: parts[:len(parts)-1],
		Leaf:     parts[len(parts)-1],
	}
}

func (p ColumnPath) IsRelation() bool {
	return len(p.Segments) > 0
}

func (p ColumnPath) String() string {
	if len(p.Segments) == 0 {
		return p.Leaf
	}
	return strings.Join(p.Segments, ".") + "." + p.Leaf
}

// Alias is the join alias for the first n relation hops.
func (p ColumnPath) Alias(n int) string {
	return "rel_" + strings.Join(p.Segments[:n], "__")
}
