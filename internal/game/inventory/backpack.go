package inventory

import "github.com/runeward/server/internal/data"

// Backpack is the 28-slot carried container. All mutating methods are
// all-or-nothing: they either apply the full quantity or leave the
// container untouched and return an error.
type Backpack struct {
	slots [BackpackSlots]*Stack
	items *data.ItemTable
}

func NewBackpack(items *data.ItemTable) *Backpack {
	return &Backpack{items: items}
}

// Get returns the stack in a slot, or nil.
func (b *Backpack) Get(slot int) *Stack {
	if slot < 0 || slot >= BackpackSlots {
		return nil
	}
	return b.slots[slot]
}

// Slots returns the raw slot array for serialization.
func (b *Backpack) Slots() []*Stack {
	return b.slots[:]
}

// FreeSlots counts empty slots.
func (b *Backpack) FreeSlots() int {
	n := 0
	for _, s := range b.slots {
		if s == nil {
			n++
		}
	}
	return n
}

// Count sums the carried quantity of an item across all slots.
func (b *Backpack) Count(itemID int32) int32 {
	var total int32
	for _, s := range b.slots {
		if s != nil && s.ItemID == itemID {
			total += s.Quantity
		}
	}
	return total
}

// CanAccept reports whether the full quantity would fit.
func (b *Backpack) CanAccept(itemID, quantity int32) bool {
	if quantity <= 0 {
		return false
	}
	info := b.items.Get(itemID)
	if info == nil {
		return false
	}
	if !info.Stackable {
		return int32(b.FreeSlots()) >= quantity
	}
	remaining := quantity
	for _, s := range b.slots {
		if s != nil && s.ItemID == itemID {
			remaining -= info.MaxStack - s.Quantity
		}
	}
	if remaining <= 0 {
		return true
	}
	return b.FreeSlots() > 0
}

// Add inserts quantity of an item. Stackables coalesce into the first
// existing stack up to maxStack, then take the lowest-index empty slot;
// non-stackables take one empty slot per unit.
func (b *Backpack) Add(itemID, quantity int32) error {
	if quantity <= 0 {
		return ErrBadQuantity
	}
	info := b.items.Get(itemID)
	if info == nil {
		return ErrBadSlot
	}
	if !b.CanAccept(itemID, quantity) {
		return ErrNoSpace
	}

	if info.Stackable {
		remaining := quantity
		for _, s := range b.slots {
			if remaining == 0 {
				break
			}
			if s != nil && s.ItemID == itemID && s.Quantity < info.MaxStack {
				take := info.MaxStack - s.Quantity
				if take > remaining {
					take = remaining
				}
				s.Quantity += take
				remaining -= take
			}
		}
		if remaining > 0 {
			slot := b.firstEmpty()
			b.slots[slot] = &Stack{ItemID: itemID, Quantity: remaining}
		}
		return nil
	}

	for i := int32(0); i < quantity; i++ {
		slot := b.firstEmpty()
		b.slots[slot] = &Stack{ItemID: itemID, Quantity: 1}
	}
	return nil
}

// Remove takes quantity of an item out of the backpack, draining stacks
// from the lowest slot up.
func (b *Backpack) Remove(itemID, quantity int32) error {
	if quantity <= 0 {
		return ErrBadQuantity
	}
	if b.Count(itemID) < quantity {
		return ErrNotEnough
	}
	remaining := quantity
	for i, s := range b.slots {
		if remaining == 0 {
			break
		}
		if s == nil || s.ItemID != itemID {
			continue
		}
		if s.Quantity > remaining {
			s.Quantity -= remaining
			remaining = 0
		} else {
			remaining -= s.Quantity
			b.slots[i] = nil
		}
	}
	return nil
}

// RemoveSlot takes up to quantity out of one specific slot.
func (b *Backpack) RemoveSlot(slot int, quantity int32) (int32, error) {
	s := b.Get(slot)
	if s == nil {
		return 0, ErrEmptySlot
	}
	if quantity <= 0 || quantity > s.Quantity {
		quantity = s.Quantity
	}
	s.Quantity -= quantity
	if s.Quantity == 0 {
		b.slots[slot] = nil
	}
	return quantity, nil
}

// Move swaps the contents of two slots when both are occupied, or assigns
// the stack to the empty destination.
func (b *Backpack) Move(from, to int) error {
	if from < 0 || from >= BackpackSlots || to < 0 || to >= BackpackSlots || from == to {
		return ErrBadSlot
	}
	if b.slots[from] == nil {
		return ErrEmptySlot
	}
	b.slots[from], b.slots[to] = b.slots[to], b.slots[from]
	return nil
}

// SetSlot places a stack directly, used when restoring from the store.
func (b *Backpack) SetSlot(slot int, s *Stack) error {
	if slot < 0 || slot >= BackpackSlots {
		return ErrBadSlot
	}
	b.slots[slot] = s
	return nil
}

func (b *Backpack) firstEmpty() int {
	for i, s := range b.slots {
		if s == nil {
			return i
		}
	}
	return -1
}
