package pricing

import "sort"

// Allocate partitions each size row's quantity into a dozen-rate portion.
// The returned slice is positional: element i holds how many of row i's
// units bill at the dozen rate; the remainder bills at the unit rate.
//
// Exactly dozenEligible units (capped by the total quantity) are assigned,
// walking the rows from the cheapest additional price upward. Ties keep
// the original row order, so the allocation is deterministic regardless of
// the order sizes were selected in.
func Allocate(rows []SizeQuantity, dozenEligible int) []int {
	out := make([]int, len(rows))
	if dozenEligible <= 0 {
		return out
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].AdditionalPrice < rows[order[b]].AdditionalPrice
	})

	remaining := dozenEligible
	for _, idx := range order {
		if remaining == 0 {
			break
		}
		qty := rows[idx].Quantity
		if qty <= 0 {
			continue
		}
		take := qty
		if take > remaining {
			take = remaining
		}
		out[idx] = take
		remaining -= take
	}
	return out
}
