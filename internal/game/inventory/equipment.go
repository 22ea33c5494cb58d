package inventory

import "github.com/runeward/server/internal/data"

// Equipment slot names, matching the item catalog's equip_slot field.
var EquipSlots = []string{
	"head", "cape", "neck", "ammo", "weapon",
	"body", "shield", "legs", "hands", "feet", "ring",
}

// Equipment is the worn-item container, keyed by slot name.
type Equipment struct {
	worn  map[string]*Stack
	items *data.ItemTable
}

func NewEquipment(items *data.ItemTable) *Equipment {
	return &Equipment{worn: make(map[string]*Stack, len(EquipSlots)), items: items}
}

// Get returns the stack worn in a named slot, or nil.
func (e *Equipment) Get(slot string) *Stack {
	return e.worn[slot]
}

// Worn returns the full worn map for serialization.
func (e *Equipment) Worn() map[string]*Stack {
	return e.worn
}

// EquipFrom moves the item in a backpack slot onto the body. Anything
// already worn in the target slot goes back into the freed backpack slot.
func (e *Equipment) EquipFrom(bp *Backpack, slot int) error {
	s := bp.Get(slot)
	if s == nil {
		return ErrEmptySlot
	}
	info := e.items.Get(s.ItemID)
	if info == nil || info.EquipSlot == "" {
		return ErrNotEquipable
	}
	prev := e.worn[info.EquipSlot]
	e.worn[info.EquipSlot] = s
	bp.SetSlot(slot, prev)
	return nil
}

// Unequip moves a worn item back into the backpack.
func (e *Equipment) Unequip(bp *Backpack, slot string) error {
	s := e.worn[slot]
	if s == nil {
		return ErrEmptySlot
	}
	if bp.FreeSlots() == 0 {
		return ErrNoSpace
	}
	bp.SetSlot(bp.firstEmpty(), s)
	delete(e.worn, slot)
	return nil
}

// SetSlot places a worn stack directly, used when restoring from the store.
func (e *Equipment) SetSlot(slot string, s *Stack) {
	if s == nil {
		delete(e.worn, slot)
		return
	}
	e.worn[slot] = s
}
