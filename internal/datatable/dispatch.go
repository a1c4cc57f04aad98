package datatable

import (
	"context"
	"strings"

	"github.com/Rana718/tablo/internal/table"
)

// ConfirmSuffix asks for an action's confirmation dialog instead of running it.
const ConfirmSuffix = "_confirm"

// Dispatch runs the action named in p. Bulk actions receive p.IDs; with p.Column
// set the action is looked up on that action column and runs against the record
// whose id is the first of p.IDs. Unknown actions and missing records yield nil.
func (e *Engine) Dispatch(ctx context.Context, p Params) (any, error) {
	name, confirm := strings.CutSuffix(p.Action, ConfirmSuffix)
	if name == "" {
		return nil, nil
	}

	if p.Column != "" {
		return e.dispatchRow(ctx, p.Column, name, p.IDs, confirm)
	}

	action, ok := e.table.Action(name)
	if !ok {
		e.log.Debugw("ignoring unknown action", "action", name)
		return nil, nil
	}

	if confirm {
		return confirmation(ctx, action, table.Target{IDs: p.IDs}), nil
	}
	if action.Handle == nil {
		return nil, nil
	}

	e.log.Infow("running action", "action", name, "ids", len(p.IDs))
	return action.Handle(ctx, p.IDs)
}

func (e *Engine) dispatchRow(ctx context.Context, column, name string, ids []string, confirm bool) (any, error) {
	action, ok := e.table.RowAction(column, name)
	if !ok {
		e.log.Debugw("ignoring unknown row action", "column", column, "action", name)
		return nil, nil
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rec, err := e.fetchRecord(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	if rec == nil {
		e.log.Debugw("row action target not found", "action", name, "id", ids[0])
		return nil, nil
	}

	if confirm {
		return confirmation(ctx, action, table.Target{IDs: ids[:1], Record: rec}), nil
	}

	e.log.Infow("running row action", "column", column, "action", name, "id", ids[0])
	switch {
	case action.HandleRecord != nil:
		return action.HandleRecord(ctx, rec)
	case action.Handle != nil:
		return action.Handle(ctx, ids[:1])
	}
	return nil, nil
}

// confirmation returns nil (not a typed nil) when the action has no dialog.
func confirmation(ctx context.Context, action *table.Action, target table.Target) any {
	if action.Confirm == nil {
		return nil
	}
	c := action.Confirm(ctx, target)
	if c == nil {
		return nil
	}
	return ConfirmResult{ConfirmData: c}
}
