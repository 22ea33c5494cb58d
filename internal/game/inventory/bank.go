package inventory

import "github.com/runeward/server/internal/data"

// Bank is the 10-tab, 50-slots-per-tab stored container. Bank stacks
// ignore maxStack; everything banks as a single stack per item per tab.
// A quantity-0 stack is a placeholder that reserves the slot for its item.
type Bank struct {
	tabs  [BankTabs][BankTabSlots]*Stack
	items *data.ItemTable

	// Placeholders controls whether withdrawing a full stack leaves a
	// quantity-0 marker behind.
	Placeholders bool
}

func NewBank(items *data.ItemTable) *Bank {
	return &Bank{items: items}
}

// Get returns the stack at (tab, slot), or nil.
func (bk *Bank) Get(tab, slot int) *Stack {
	if tab < 0 || tab >= BankTabs || slot < 0 || slot >= BankTabSlots {
		return nil
	}
	return bk.tabs[tab][slot]
}

// Tab returns a tab's raw slots for serialization.
func (bk *Bank) Tab(tab int) []*Stack {
	if tab < 0 || tab >= BankTabs {
		return nil
	}
	return bk.tabs[tab][:]
}

// Deposit stores quantity of an item into a tab, preferring an existing
// stack (or placeholder) of the same item before claiming an empty slot.
func (bk *Bank) Deposit(tab int, itemID, quantity int32) error {
	if tab < 0 || tab >= BankTabs {
		return ErrBadSlot
	}
	if quantity <= 0 {
		return ErrBadQuantity
	}
	for _, s := range bk.tabs[tab] {
		if s != nil && s.ItemID == itemID {
			s.Quantity += quantity
			return nil
		}
	}
	for i, s := range bk.tabs[tab] {
		if s == nil {
			bk.tabs[tab][i] = &Stack{ItemID: itemID, Quantity: quantity}
			return nil
		}
	}
	return ErrNoSpace
}

// Withdraw removes up to quantity from a bank slot, returning how many
// were taken. A fully drained slot becomes a placeholder when enabled.
func (bk *Bank) Withdraw(tab, slot int, quantity int32) (int32, error) {
	s := bk.Get(tab, slot)
	if s == nil || s.IsPlaceholder() {
		return 0, ErrEmptySlot
	}
	if quantity <= 0 || quantity > s.Quantity {
		quantity = s.Quantity
	}
	s.Quantity -= quantity
	if s.Quantity == 0 && !bk.Placeholders {
		bk.tabs[tab][slot] = nil
	}
	return quantity, nil
}

// Move swaps or assigns between two slots of the same tab.
func (bk *Bank) Move(tab, from, to int) error {
	if tab < 0 || tab >= BankTabs ||
		from < 0 || from >= BankTabSlots || to < 0 || to >= BankTabSlots || from == to {
		return ErrBadSlot
	}
	if bk.tabs[tab][from] == nil {
		return ErrEmptySlot
	}
	bk.tabs[tab][from], bk.tabs[tab][to] = bk.tabs[tab][to], bk.tabs[tab][from]
	return nil
}

// ClearPlaceholder releases a placeholder slot.
func (bk *Bank) ClearPlaceholder(tab, slot int) error {
	s := bk.Get(tab, slot)
	if s == nil || !s.IsPlaceholder() {
		return ErrEmptySlot
	}
	bk.tabs[tab][slot] = nil
	return nil
}

// SetSlot places a stack directly, used when restoring from the store.
func (bk *Bank) SetSlot(tab, slot int, s *Stack) error {
	if tab < 0 || tab >= BankTabs || slot < 0 || slot >= BankTabSlots {
		return ErrBadSlot
	}
	bk.tabs[tab][slot] = s
	return nil
}
