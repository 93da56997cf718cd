package shift

import (
	"sort"
	"strings"
)

// RegistrationFee is charged once per admission on top of the shift fee.
const RegistrationFee = 50

// combinationPrices holds the negotiated price for every non-empty subset
// of the catalog, keyed by canonicalKey.
var combinationPrices = buildCombinations(map[int]func([]ID) int{
	1: func(ids []ID) int { p, _ := PriceFor(ids[0]); return p },
	2: func([]ID) int { return 549 },
	3: func([]ID) int { return 749 },
	4: func([]ID) int { return 999 },
})

// buildCombinations enumerates all 15 subsets of the catalog and prices
// each one by its size.
func buildCombinations(priceBySize map[int]func([]ID) int) map[string]int {
	ids := IDs()
	out := make(map[string]int, 1<<len(ids)-1)
	for mask := 1; mask < 1<<len(ids); mask++ {
		var subset []ID
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				subset = append(subset, id)
			}
		}
		out[canonicalKey(subset)] = priceBySize[len(subset)](subset)
	}
	return out
}

// canonicalKey sorts a copy of ids lexically and joins them with commas.
func canonicalKey(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// QuoteFee prices a selection of shifts.  The exact subset is looked up in
// the combination table; when it is missing (duplicates, unknown ids) the
// price falls back to the sum of the known single-shift prices.  The input
// slice is not modified and the result does not depend on its order.  The
// registration fee is not included.
func QuoteFee(selected []ID) int {
	if len(selected) == 0 {
		return 0
	}
	if fee, ok := combinationPrices[canonicalKey(selected)]; ok {
		return fee
	}
	total := 0
	for _, id := range selected {
		if p, err := PriceFor(id); err == nil {
			total += p
		}
	}
	return total
}

// AdmissionTotal is the amount due for an admission: the shift fee plus
// the one-time registration fee.
func AdmissionTotal(selected []ID) int {
	return QuoteFee(selected) + RegistrationFee
}
