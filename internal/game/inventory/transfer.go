package inventory

// Transfer operations between a character's backpack and bank. Both sides
// mutate only when the whole transfer can complete, so a failed call leaves
// the containers exactly as they were.

// Deposit moves quantity of the item in a backpack slot into a bank tab.
func Deposit(bp *Backpack, bk *Bank, invSlot, tab int, quantity int32) error {
	s := bp.Get(invSlot)
	if s == nil {
		return ErrEmptySlot
	}
	itemID := s.ItemID
	if quantity <= 0 || quantity > bp.Count(itemID) {
		quantity = bp.Count(itemID)
	}
	if !bankCanAccept(bk, tab, itemID) {
		return ErrNoSpace
	}
	if err := bp.Remove(itemID, quantity); err != nil {
		return err
	}
	return bk.Deposit(tab, itemID, quantity)
}

// Withdraw moves quantity from a bank slot into the backpack. The transfer
// is refused outright when the backpack cannot accept the full requested
// quantity.
func Withdraw(bp *Backpack, bk *Bank, tab, bankSlot int, quantity int32) error {
	s := bk.Get(tab, bankSlot)
	if s == nil || s.IsPlaceholder() {
		return ErrEmptySlot
	}
	if quantity <= 0 || quantity > s.Quantity {
		quantity = s.Quantity
	}
	if !bp.CanAccept(s.ItemID, quantity) {
		return ErrNoSpace
	}
	taken, err := bk.Withdraw(tab, bankSlot, quantity)
	if err != nil {
		return err
	}
	return bp.Add(s.ItemID, taken)
}

func bankCanAccept(bk *Bank, tab int, itemID int32) bool {
	if tab < 0 || tab >= BankTabs {
		return false
	}
	for _, s := range bk.Tab(tab) {
		if s == nil || s.ItemID == itemID {
			return true
		}
	}
	return false
}
