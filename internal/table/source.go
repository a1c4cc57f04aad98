package table

import "fmt"

type RelationKind string

const (
	BelongsTo RelationKind = "belongs_to"
	HasOne    RelationKind = "has_one"
	HasMany   RelationKind = "has_many"
)

// Relation links a source to a related source.
//
// For BelongsTo the parent row carries ForeignKey and points at OwnerKey of the
// related row. For HasOne and HasMany the related row carries ForeignKey and points
// at OwnerKey of the parent row.
type Relation struct {
	Kind       RelationKind
	Source     *Source
	ForeignKey string
	OwnerKey   string
}

func (r *Relation) ToOne() bool {
	return r.Kind == BelongsTo || r.Kind == HasOne
}

// Source is the table a datatable queries, with the relations its columns can
// traverse.
type Source struct {
	Table      string
	PrimaryKey string
	Relations  map[string]*Relation
}

func NewSource(table string) *Source {
	return &Source{
		Table:      table,
		PrimaryKey: "id",
		Relations:  make(map[string]*Relation),
	}
}

func (s *Source) WithPrimaryKey(pk string) *Source {
	s.PrimaryKey = pk
	return s
}

func (s *Source) BelongsTo(name string, related *Source, foreignKey, ownerKey string) *Source {
	if ownerKey == "" {
		ownerKey = related.PrimaryKey
	}
	return s.relate(name, &Relation{Kind: BelongsTo, Source: related, ForeignKey: foreignKey, OwnerKey: ownerKey})
}

func (s *Source) HasOne(name string, related *Source, foreignKey, ownerKey string) *Source {
	if ownerKey == "" {
		ownerKey = s.PrimaryKey
	}
	return s.relate(name, &Relation{Kind: HasOne, Source: related, ForeignKey: foreignKey, OwnerKey: ownerKey})
}

func (s *Source) HasMany(name string, related *Source, foreignKey, ownerKey string) *Source {
	if ownerKey == "" {
		ownerKey = s.PrimaryKey
	}
	return s.relate(name, &Relation{Kind: HasMany, Source: related, ForeignKey: foreignKey, OwnerKey: ownerKey})
}

func (s *Source) relate(name string, rel *Relation) *Source {
	if s.Relations == nil {
		s.Relations = make(map[string]*Relation)
	}
	s.Relations[name] = rel
	return s
}

// Hop is one resolved step of a relation path.
type Hop struct {
	Name     string
	Parent   *Source
	Relation *Relation
}

// Resolve walks the relation segments of a path starting at s.
func (s *Source) Resolve(p ColumnPath) ([]Hop, error) {
	hops := make([]Hop, 0, len(p.Segments))
	current := s
	for _, name := range p.Segments {
		rel, ok := current.Relations[name]
		if !ok || rel.Source == nil {
			return nil, fmt.Errorf("%w: %q on %s (path %s)", ErrUnknownRelation, name, current.Table, p)
		}
		hops = append(hops, Hop{Name: name, Parent: current, Relation: rel})
		current = rel.Source
	}
	return hops, nil
}

// ToOne reports whether every hop of the path yields at most one row.
func ToOne(hops []Hop) bool {
	for _, h := range hops {
		if !h.Relation.ToOne() {
			return false
		}
	}
	return true
}
