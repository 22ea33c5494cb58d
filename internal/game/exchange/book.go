package exchange

import "sort"

// book holds the live order book for one item.
type book struct {
	buys  []*Offer
	sells []*Offer
}

// candidatesFor returns the resting offers the incoming offer can match,
// in price-time priority order: for a buy, sells priced ≤ P ascending
// (cheapest first); for a sell, buys priced ≥ P descending. Ties break by
// earliest creation.
func (b *book) candidatesFor(incoming *Offer) []*Offer {
	var out []*Offer
	if incoming.Kind == KindBuy {
		for _, s := range b.sells {
			if s.Active() && s.Price <= incoming.Price {
				out = append(out, s)
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Price != out[j].Price {
				return out[i].Price < out[j].Price
			}
			return out[i].CreatedSeq < out[j].CreatedSeq
		})
		return out
	}
	for _, bo := range b.buys {
		if bo.Active() && bo.Price >= incoming.Price {
			out = append(out, bo)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price > out[j].Price
		}
		return out[i].CreatedSeq < out[j].CreatedSeq
	})
	return out
}

func (b *book) add(o *Offer) {
	if o.Kind == KindBuy {
		b.buys = append(b.buys, o)
	} else {
		b.sells = append(b.sells, o)
	}
}

func (b *book) remove(o *Offer) {
	side := &b.sells
	if o.Kind == KindBuy {
		side = &b.buys
	}
	for i, cur := range *side {
		if cur.ID == o.ID {
			*side = append((*side)[:i], (*side)[i+1:]...)
			return
		}
	}
}

func (b *book) empty() bool {
	return len(b.buys) == 0 && len(b.sells) == 0
}
