// Package quota computes how many identity references an account may hold.
package quota

import "profileguard/internal/profile/models"

// BaseSlots is the allowance every plan tier gets before purchases.
const BaseSlots = 1

// Capacity is the slot arithmetic for one account at one moment.
type Capacity struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// Exhausted reports whether no further reference may be appended.
func (c Capacity) Exhausted() bool {
	return c.Remaining == 0
}

// Calculate returns the capacity for info given used occupied slots.
// Negative inputs are clamped to zero.
func Calculate(info models.AccountQuotaInfo, used int) Capacity {
	purchased := max(info.PurchasedSlots, 0)
	used = max(used, 0)
	total := BaseSlots + purchased
	return Capacity{
		Total:     total,
		Used:      used,
		Remaining: max(total-used, 0),
	}
}

// ForSet is Calculate with the set's occupied slot count.
func ForSet(info models.AccountQuotaInfo, set models.ReferenceSet) Capacity {
	used := 0
	if set != nil {
		used = set.Len()
	}
	return Calculate(info, used)
}
