package domain

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
	ChangeCleared ChangeKind = "cleared"
)

// An ItemDelta is a signed quantity change for a single product.
type ItemDelta struct {
	ProductID string
	Delta     int
}

// A Change is published after every mutation that changes the cart items.
//
// State is the cart after the mutation.
type Change struct {
	Kind   ChangeKind
	Deltas []ItemDelta
	State  CartState
}
