package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(1, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 0, PageCount(5, 0))
}

func TestComputeShowsSizePlusOneButtons(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, Compute(0, 5, 20))
	assert.Equal(t, []int{17, 18, 19}, Compute(17, 5, 20))
	assert.Equal(t, []int{0, 1, 2}, Compute(0, 5, 3))
	assert.Empty(t, Compute(0, 5, 0))
}

func TestComputeNeverLeavesRange(t *testing.T) {
	for total := 0; total <= 25; total++ {
		for size := 1; size <= 7; size++ {
			for start := -2; start <= total+2; start++ {
				for _, page := range Compute(start, size, total) {
					if page < 0 || page >= total {
						t.Fatalf("Compute(%d, %d, %d) returned %d", start, size, total, page)
					}
				}
			}
		}
	}
}

func TestNextStartRules(t *testing.T) {
	tests := []struct {
		name                       string
		start, target, size, total int
		want                       int
	}{
		{"within window", 0, 3, 5, 20, 0},
		{"edge of window", 0, 5, 5, 20, 0},
		{"forward jump", 0, 8, 5, 20, 8},
		{"forward jump to last", 0, 19, 5, 20, 14},
		{"last with fewer pages than buttons", 0, 3, 5, 4, 0},
		{"backward jump", 10, 7, 5, 20, 2},
		{"backward jump clamps at zero", 10, 3, 5, 20, 0},
		{"last inside the window keeps start", 8, 9, 5, 10, 8},
		{"last at the window edge keeps start", 6, 9, 5, 10, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStart(tt.start, tt.target, tt.size, tt.total))
		})
	}
}

func TestNewReportsStartingPage(t *testing.T) {
	var pages []int
	w := New(10, 5, 3, func(page int) { pages = append(pages, page) })

	require.Equal(t, []int{3}, pages)
	assert.Equal(t, 3, w.Current())
	assert.Equal(t, 3, w.Start())
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8}, w.Visible())
}

func TestNewClampsStartingPage(t *testing.T) {
	w := New(4, 5, 12, nil)
	assert.Equal(t, 3, w.Current())

	w = New(4, 5, -3, nil)
	assert.Equal(t, 0, w.Current())
}

func TestEmptyWindow(t *testing.T) {
	called := false
	w := New(0, 5, 0, func(int) { called = true })

	assert.False(t, called)
	assert.Empty(t, w.Visible())
	assert.Nil(t, w.Plan())
	assert.False(t, w.CanPrevious())
	assert.False(t, w.CanNext())
	assert.False(t, w.Next())
	assert.False(t, w.GoTo(0))
}

func TestBoundaryActions(t *testing.T) {
	var pages []int
	w := New(10, 5, 0, func(page int) { pages = append(pages, page) })

	assert.False(t, w.CanPrevious())
	assert.False(t, w.Previous())
	assert.False(t, w.First())
	assert.True(t, w.CanNext())

	require.True(t, w.Next())
	assert.Equal(t, 1, w.Current())

	require.True(t, w.Last())
	assert.Equal(t, 9, w.Current())
	assert.Equal(t, 4, w.Start())
	assert.False(t, w.CanNext())
	assert.False(t, w.Next())
	assert.False(t, w.Last())

	require.True(t, w.Previous())
	assert.Equal(t, 8, w.Current())

	require.True(t, w.First())
	assert.Equal(t, 0, w.Current())
	assert.Equal(t, 0, w.Start())

	assert.Equal(t, []int{0, 1, 9, 8, 0}, pages)
}

func TestPreviousNextDisabledExactlyAtBoundaries(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for current := 0; current < total; current++ {
			w := Restore(total, 5, current, current)
			if w.CanPrevious() != (current != 0) {
				t.Fatalf("total=%d current=%d: CanPrevious=%v", total, current, w.CanPrevious())
			}
			if w.CanNext() != (current != total-1) {
				t.Fatalf("total=%d current=%d: CanNext=%v", total, current, w.CanNext())
			}
		}
	}
}

func TestJumpToLastKeepsFullTrailingWindow(t *testing.T) {
	for total := 1; total <= 20; total++ {
		for size := 1; size <= 6; size++ {
			for current := 0; current < total; current++ {
				for start := 0; start <= current; start++ {
					if total-1 <= start+size {
						continue
					}
					w := Restore(total, size, current, start)
					w.GoTo(total - 1)

					visible := w.Visible()
					want := min(size+1, total)
					if len(visible) < want {
						t.Fatalf("total=%d size=%d from (%d,%d): %d buttons, want >= %d", total, size, current, start, len(visible), want)
					}
					if visible[len(visible)-1] != total-1 {
						t.Fatalf("total=%d size=%d: window %v does not end at last page", total, size, visible)
					}
				}
			}
		}
	}
}

func TestLastInsideWindowKeepsStart(t *testing.T) {
	w := New(10, 5, 0, nil)
	require.True(t, w.GoTo(6))
	assert.Equal(t, 6, w.Start())

	require.True(t, w.Last())
	assert.Equal(t, 9, w.Current())
	assert.Equal(t, 6, w.Start())
	assert.Equal(t, []int{6, 7, 8, 9}, w.Visible())
}

func TestStartNeverPassesCurrent(t *testing.T) {
	w := New(30, 5, 0, nil)
	for _, target := range []int{4, 12, 29, 3, 15, 0, 28, 27, 6, 29} {
		require.True(t, w.GoTo(target))
		if w.Start() > w.Current() {
			t.Fatalf("start %d > current %d after GoTo(%d)", w.Start(), w.Current(), target)
		}
	}
}

func TestGoToOutOfRangeIsNoop(t *testing.T) {
	calls := 0
	w := New(5, 2, 2, func(int) { calls++ })
	assert.False(t, w.GoTo(-1))
	assert.False(t, w.GoTo(5))
	assert.Equal(t, 2, w.Current())
	assert.Equal(t, 1, calls)
}

func TestRestoreKeepsStartBehindCurrent(t *testing.T) {
	w := Restore(10, 5, 2, 7)
	assert.Equal(t, 2, w.Current())
	assert.Equal(t, 2, w.Start())
}

func TestPlan(t *testing.T) {
	w := Restore(20, 5, 0, 0)
	buttons := w.Plan()
	require.Len(t, buttons, 10)

	assert.Equal(t, ButtonFirst, buttons[0].Kind)
	assert.True(t, buttons[0].Disabled)
	assert.True(t, buttons[1].Disabled)

	assert.Equal(t, "1", buttons[2].Label)
	assert.True(t, buttons[2].Active)
	assert.Equal(t, "6", buttons[7].Label)
	assert.False(t, buttons[7].Active)

	next := buttons[8]
	assert.Equal(t, ButtonNext, next.Kind)
	assert.Equal(t, 1, next.Target)
	assert.Equal(t, 0, next.Start)

	last := buttons[9]
	assert.Equal(t, ButtonLast, last.Kind)
	assert.Equal(t, 19, last.Target)
	assert.Equal(t, 14, last.Start)
}
