// Package pagination computes the sliding window of page buttons shown under
// a question list.
package pagination

// Window tracks the current page and the first visible page button for one
// list view. The rendered buttons are [start, min(start+size+1, totalPages)).
type Window struct {
	totalPages int
	size       int
	current    int
	start      int
	onPage     func(page int)
}

// PageCount returns the number of pages needed for items at perPage items each.
func PageCount(items, perPage int) int {
	if items <= 0 || perPage <= 0 {
		return 0
	}
	return (items + perPage - 1) / perPage
}

// Compute returns the visible page indices for a window starting at start.
// The window shows size+1 buttons.
func Compute(start, size, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	start = clamp(start, 0, totalPages-1)
	stop := min(start+size+1, totalPages)
	pages := make([]int, 0, stop-start)
	for page := start; page < stop; page++ {
		pages = append(pages, page)
	}
	return pages
}

// NextStart applies the window transition for a navigation to target.
func NextStart(start, target, size, totalPages int) int {
	last := totalPages - 1
	switch {
	case target > start+size:
		// Jumping to the last page keeps a full trailing window visible.
		if target == last {
			return max(0, target-size)
		}
		return target
	case target < start:
		return max(target-size, 0)
	}
	return start
}

// New creates a window positioned at startingPage and reports that page to
// onPage, mirroring the initial render of a list.
func New(totalPages, size, startingPage int, onPage func(page int)) *Window {
	w := Restore(totalPages, size, startingPage, startingPage)
	w.onPage = onPage
	w.notify()
	return w
}

// Restore rebuilds a window from previously rendered state without firing
// any callback.
func Restore(totalPages, size, current, start int) *Window {
	if totalPages < 0 {
		totalPages = 0
	}
	if size <= 0 {
		size = 1
	}
	w := &Window{totalPages: totalPages, size: size}
	if totalPages == 0 {
		return w
	}
	w.current = clamp(current, 0, totalPages-1)
	w.start = clamp(start, 0, w.current)
	return w
}

// GoTo navigates to target. Targets outside [0, totalPages) are ignored.
func (w *Window) GoTo(target int) bool {
	if target < 0 || target >= w.totalPages {
		return false
	}
	w.start = NextStart(w.start, target, w.size, w.totalPages)
	w.current = target
	w.notify()
	return true
}

// Peek returns the window start a navigation to target would produce.
func (w *Window) Peek(target int) int {
	return NextStart(w.start, target, w.size, w.totalPages)
}

// First navigates to page 0.
func (w *Window) First() bool {
	if !w.CanPrevious() {
		return false
	}
	return w.GoTo(0)
}

// Previous navigates one page back; disabled on the first page.
func (w *Window) Previous() bool {
	if !w.CanPrevious() {
		return false
	}
	return w.GoTo(w.current - 1)
}

// Next navigates one page forward; disabled on the last page.
func (w *Window) Next() bool {
	if !w.CanNext() {
		return false
	}
	return w.GoTo(w.current + 1)
}

// Last navigates to the final page.
func (w *Window) Last() bool {
	if !w.CanNext() {
		return false
	}
	return w.GoTo(w.totalPages - 1)
}

// CanPrevious reports whether First and Previous are enabled. It is false on
// page 0 and for an empty window.
func (w *Window) CanPrevious() bool { return w.totalPages > 0 && w.current != 0 }

// CanNext reports whether Next and Last are enabled. It is false on the final
// page and for an empty window.
func (w *Window) CanNext() bool { return w.totalPages > 0 && w.current != w.totalPages-1 }

func (w *Window) Current() int { return w.current }
func (w *Window) Start() int { return w.start }
func (w *Window) Size() int { return w.size }
func (w *Window) TotalPages() int { return w.totalPages }

// Visible returns the page indices currently shown.
func (w *Window) Visible() []int {
	return Compute(w.start, w.size, w.totalPages)
}

func (w *Window) notify() {
	if w.onPage != nil && w.totalPages > 0 {
		w.onPage(w.current)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
