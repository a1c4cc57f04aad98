package datatable

import "github.com/Rana718/tablo/internal/table"

// serialize converts fetched records into rows. offset is the ordinal of the
// first record, used as the id when neither a checkbox value nor a primary key
// is available.
func (e *Engine) serialize(records []map[string]any, offset int) []Row {
	checkbox := e.table.CheckboxColumn()

	rows := make([]Row, 0, len(records))
	for i, raw := range records {
		rec := table.Record(raw)
		row := make(Row, len(e.table.Columns())+2)

		for _, col := range e.table.Columns() {
			name := col.Name()
			switch col.Type() {
			case table.CheckboxColumn:
				v := col.CheckboxValue(rec)
				row[name] = v
				row[name+"_value"] = v
				row[name+"_checked"] = col.Checked(rec)
				row[name+"_disabled"] = col.Disabled(rec)
			case table.ActionColumn:
				items := col.RowActions()
				descriptors := make([]table.ActionDescriptor, 0, len(items))
				for _, item := range items {
					descriptors = append(descriptors, item.RowDescriptor(rec))
				}
				row[name+"_action"] = descriptors
			default:
				row[name] = col.Render(rec)
			}
			if icon, ok := col.Icon(rec); ok {
				row[name+"_icon"] = icon
			}
		}

		id := e.table.RowID(rec)
		if id == nil && checkbox == nil {
			id = offset + i
		}
		row["id"] = id
		row["_id"] = id

		rows = append(rows, row)
	}
	return rows
}
