package domain

import (
	"context"
	"errors"
)

// ErrTxSerialization marks a storage-level serialization or deadlock failure.
// Callers may retry the whole transaction a bounded number of times before
// surfacing ErrConflict.
var ErrTxSerialization = errors.New("transaction serialization conflict")

// Transactor runs fn inside a single storage transaction. Repository calls
// made with the context passed to fn join that transaction; fn returning an
// error rolls everything back.
//
// Admission control relies on this: a capacity check and the matching counter
// update must commit or fail as one unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
