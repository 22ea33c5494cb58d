// Package inventory implements the backpack, bank and equipment containers
// and the transfer operations between them.
package inventory

import "errors"

const (
	BackpackSlots = 28
	BankTabs      = 10
	BankTabSlots  = 50
)

var (
	ErrNoSpace      = errors.New("inventory: no space")
	ErrNotEnough    = errors.New("inventory: not enough items")
	ErrBadSlot      = errors.New("inventory: bad slot")
	ErrEmptySlot    = errors.New("inventory: empty slot")
	ErrNotEquipable = errors.New("inventory: item not equipable")
	ErrBadQuantity  = errors.New("inventory: bad quantity")
)

// Stack is one occupied container slot. Quantity 0 marks a bank placeholder.
type Stack struct {
	ItemID   int32
	Quantity int32
	Charges  int32
	Custom   string
}

// IsPlaceholder reports whether the stack only reserves a bank slot.
func (s *Stack) IsPlaceholder() bool {
	return s != nil && s.Quantity == 0
}
