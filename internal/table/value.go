package table

// Record is one fetched row keyed by column name. Relation columns are keyed by
// their dotted name.
type Record map[string]any

func (r Record) Get(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// Value is either a static field of the record or a value computed from it.
type Value struct {
	field string
	fn    func(Record) any
}

func Static(field string) Value {
	return Value{field: field}
}

func Computed(fn func(Record) any) Value {
	return Value{fn: fn}
}

// Field is the static field name, empty for computed values.
func (v Value) Field() string {
	if v.fn != nil {
		return ""
	}
	return v.field
}

func (v Value) IsZero() bool {
	return v.field == "" && v.fn == nil
}

func (v Value) Resolve(rec Record) any {
	if v.fn != nil {
		return v.fn(rec)
	}
	if v.field == "" {
		return nil
	}
	return rec.Get(v.field)
}
