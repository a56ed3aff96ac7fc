package tui

// Ellipsis marks a gap in the page strip.
const Ellipsis = 0

const maxVisiblePages = 5

// PageNumbers returns the page strip for the table footer. Up to five pages
// are listed in full; beyond that the strip keeps the first and last page
// and a window around current, with Ellipsis in the gaps.
func PageNumbers(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= maxVisiblePages {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	switch {
	case current <= 3:
		return []int{1, 2, 3, 4, Ellipsis, total}
	case current >= total-2:
		return []int{1, Ellipsis, total - 3, total - 2, total - 1, total}
	}
	return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
}
