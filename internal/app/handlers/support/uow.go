package support

import (
	"context"

	"campusconnect/internal/app/uow"
)

// Unit is a unit of work resolved for one handler call. When the handler had
// to open it itself (no transaction middleware upstream) the unit is managed
// and Commit/Close act on it; otherwise both leave it to the owner.
type Unit struct {
	uow.UnitOfWork
	managed   bool
	committed bool
}

// BeginUnit returns the unit bound to ctx, or opens a new one from factory.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (*Unit, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &Unit{UnitOfWork: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	return &Unit{UnitOfWork: unit, managed: true}, uow.Bind(ctx, unit), nil
}

// BeginReadOnlyUnit is BeginUnit for query handlers.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (*Unit, context.Context, error) {
	return BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
}

func (u *Unit) Commit(ctx context.Context) error {
	if !u.managed || u.committed {
		return nil
	}
	if err := u.UnitOfWork.Commit(ctx); err != nil {
		return err
	}
	u.committed = true
	return nil
}

// Close rolls back a managed unit that was not committed.
func (u *Unit) Close(ctx context.Context) {
	if u == nil || !u.managed || u.committed {
		return
	}
	_ = u.UnitOfWork.Rollback(ctx)
}
