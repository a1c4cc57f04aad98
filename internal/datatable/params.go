package datatable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rana718/tablo/internal/table"
)

// Params is one table request after parsing. Every field is optional.
type Params struct {
	Search         string
	Sort           string
	Direction      table.Direction
	Filters        map[string][]string
	PageSize       int
	Page           int
	VisibleColumns map[string]bool

	Action string
	IDs    []string
	Column string

	Export        bool
	ExportType    string
	ExportColumns string
	ExportRows    string
	SelectedIDs   []string

	// Direct holds every non-reserved key; keys naming a column filter on it.
	Direct map[string][]string

	Seq int64
}

const (
	keySearch         = "search"
	keySort           = "sort"
	keyDirection      = "direction"
	keyFilters        = "filters"
	keyPageSize       = "pageSize"
	keyPage           = "page"
	keyVisibleColumns = "visibleColumns"
	keyAction         = "action"
	keyIDs            = "ids"
	keyColumn         = "column"
	keyExport         = "export"
	keyExportType     = "exportType"
	keyExportColumns  = "exportColumns"
	keyExportRows     = "exportRows"
	keySelectedIDs    = "selectedIds"
	keySeq            = "seq"
)

// ParseParams reads a decoded JSON body or a flattened query string. Nested maps
// may arrive either as objects or as "filters[status]" style keys.
func ParseParams(raw map[string]any) Params {
	p := Params{
		Direction: table.Asc,
		Filters:   make(map[string][]string),
		Direct:    make(map[string][]string),
	}

	for key, v := range raw {
		switch key {
		case keySearch:
			p.Search = strings.TrimSpace(asString(v))
		case keySort:
			p.Sort = asString(v)
		case keyDirection:
			p.Direction = table.ParseDirection(asString(v))
		case keyFilters:
			for name, fv := range asMap(v) {
				p.Filters[name] = table.SplitValues(fv)
			}
		case keyPageSize:
			p.PageSize = asInt(v)
			if p.PageSize < 1 {
				p.PageSize = 1
			}
		case keyPage:
			p.Page = asInt(v)
		case keyVisibleColumns:
			m := asMap(v)
			p.VisibleColumns = make(map[string]bool, len(m))
			for name, vis := range m {
				p.VisibleColumns[name] = asBool(vis)
			}
		case keyAction:
			p.Action = asString(v)
		case keyIDs:
			p.IDs = table.SplitValues(v)
		case keyColumn:
			p.Column = asString(v)
		case keyExport:
			p.Export = asBool(v)
		case keyExportType:
			p.ExportType = asString(v)
		case keyExportColumns:
			p.ExportColumns = asString(v)
		case keyExportRows:
			p.ExportRows = asString(v)
		case keySelectedIDs:
			p.SelectedIDs = table.SplitValues(v)
		case keySeq:
			p.Seq = int64(asInt(v))
		default:
			if name, ok := bracketKey(key, keyFilters); ok {
				p.Filters[name] = table.SplitValues(v)
				continue
			}
			if name, ok := bracketKey(key, keyVisibleColumns); ok {
				if p.VisibleColumns == nil {
					p.VisibleColumns = make(map[string]bool)
				}
				p.VisibleColumns[name] = asBool(v)
				continue
			}
			if values := table.SplitValues(v); len(values) > 0 {
				p.Direct[key] = values
			}
		}
	}
	return p
}

// ActiveFilters drops filters without values.
func (p Params) ActiveFilters() map[string][]string {
	active := make(map[string][]string, len(p.Filters))
	for name, values := range p.Filters {
		if len(values) > 0 {
			active[name] = values
		}
	}
	return active
}

func bracketKey(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix+"[") || !strings.HasSuffix(key, "]") {
		return "", false
	}
	name := key[len(prefix)+1 : len(key)-1]
	return name, name != ""
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		if len(val) > 0 {
			return asString(val[0])
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func asInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		n, _ := val.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(val))
		return n
	}
	return 0
}

func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

func asMap(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		return val
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return m
	case map[string][]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return m
	case map[string]bool:
		m := make(map[string]any, len(val))
		for k, b := range val {
			m[k] = b
		}
		return m
	case string:
		// query strings may carry the map JSON encoded
		var m map[string]any
		if err := json.Unmarshal([]byte(val), &m); err == nil {
			return m
		}
	}
	return nil
}
