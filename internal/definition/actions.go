package definition

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/table"
)

const (
	BuiltinDelete = "delete"
	BuiltinExport = "export"
)

// Result is what builtin actions return to the client.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Title   string `json:"title"`
	Variant string `json:"variant"`
	// URL is set when the client should follow up with a download.
	URL string `json:"url,omitempty"`
}

var placeholder = regexp.MustCompile(`\{([\w.]+)\}`)

// expand replaces {field} placeholders with record values.
func expand(tmpl string, rec table.Record) string {
	if rec == nil {
		return tmpl
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		v := rec.Get(m[1 : len(m)-1])
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

func (ad ActionDef) build(sc scope) (table.ActionItem, error) {
	src, db := sc.src, sc.db
	if len(ad.Actions) > 0 {
		group := &table.ActionGroup{Name: ad.Name, Label: ad.Label, Icon: ad.Icon, Style: ad.Style}
		for _, member := range ad.Actions {
			if len(member.Actions) > 0 {
				return nil, fmt.Errorf("group %q: nested group %q", ad.Name, member.Name)
			}
			item, err := member.build(sc)
			if err != nil {
				return nil, err
			}
			group.Actions = append(group.Actions, item.(*table.Action))
		}
		return group, nil
	}

	action := &table.Action{
		Name:  ad.Name,
		Label: ad.Label,
		Icon:  ad.Icon,
		Style: ad.Style,
		Props: ad.Props,
	}

	if ad.URL != "" {
		tmpl := ad.URL
		action.URL = func(rec table.Record) string { return expand(tmpl, rec) }
	}

	if c := ad.Confirm; c != nil {
		confirm := *c
		action.Confirm = func(_ context.Context, target table.Target) *table.Confirmation {
			message := strings.ReplaceAll(confirm.Message, ":count", strconv.Itoa(len(target.IDs)))
			return &table.Confirmation{
				Title:   expand(confirm.Title, target.Record),
				Message: expand(message, target.Record),
				Confirm: confirm.Confirm,
				Cancel:  confirm.Cancel,
			}
		}
	}

	switch ad.Builtin {
	case "":
	case BuiltinDelete:
		if strings.Contains(sc.idField, ".") {
			return nil, fmt.Errorf("action %q: %w (%s)", ad.Name, ErrRelationID, sc.idField)
		}
		idField := sc.idField
		action.Handle = func(ctx context.Context, ids []string) (any, error) {
			return deleteRows(ctx, db, src.Table, idField, ids)
		}
		action.HandleRecord = func(ctx context.Context, rec table.Record) (any, error) {
			id := rec.Get(src.PrimaryKey)
			if id == nil {
				return Result{Message: "Record has no primary key", Title: "Delete", Variant: "warning"}, nil
			}
			return deleteRows(ctx, db, src.Table, src.PrimaryKey, []string{fmt.Sprint(id)})
		}
	case BuiltinExport:
		action.Handle = func(_ context.Context, ids []string) (any, error) {
			return exportLink(sc.tableID, ids), nil
		}
	default:
		return nil, fmt.Errorf("action %q: %w %q", ad.Name, ErrUnknownBuiltin, ad.Builtin)
	}

	return action, nil
}

// deleteRows removes the rows of tbl whose field value is in ids.
func deleteRows(ctx context.Context, db *database.DB, tbl, field string, ids []string) (any, error) {
	if len(ids) == 0 {
		return Result{Message: "No rows selected", Title: "Delete", Variant: "warning"}, nil
	}

	dialect := db.Dialect()
	res, err := db.Exec(ctx, db.Builder().
		Delete(dialect.Quote(tbl)).
		Where(sq.Eq{dialect.Quote(field): ids}))
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Deleted %d of %d selected rows", n, len(ids)),
		Title:   "Deleted",
		Variant: "success",
	}, nil
}

// exportLink points the client at the export download of the selected rows,
// or of every row when nothing is selected.
func exportLink(tableID string, ids []string) Result {
	q := url.Values{}
	message := "Exporting all rows"
	if len(ids) > 0 {
		q.Set("exportRows", "selected")
		q.Set("selectedIds", strings.Join(ids, ","))
		message = fmt.Sprintf("Exporting %d selected rows", len(ids))
	} else {
		q.Set("exportRows", "all")
	}
	return Result{
		Success: true,
		Message: message,
		Title:   "Export",
		Variant: "info",
		URL:     "/api/tables/" + url.PathEscape(tableID) + "/export?" + q.Encode(),
	}
}
