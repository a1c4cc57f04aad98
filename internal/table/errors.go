package table

import "errors"

var (
	ErrNoSource        = errors.New("table has no query source")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrDuplicateFilter = errors.New("duplicate filter name")
	ErrDuplicateAction = errors.New("duplicate action name")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownRelation = errors.New("unknown relation")
	ErrToManyColumn    = errors.New("column traverses a to-many relation")
	ErrInvalidEnum     = errors.New("invalid value")
	ErrNotExportable   = errors.New("table is not exportable")
)
