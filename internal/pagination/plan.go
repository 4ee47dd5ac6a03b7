package pagination

import "strconv"

// ButtonKind identifies the role of a pager button.
type ButtonKind int

const (
	ButtonFirst ButtonKind = iota
	ButtonPrevious
	ButtonPage
	ButtonNext
	ButtonLast
)

// Button is one entry of the rendered pager row. Start is the window start
// the navigation would produce, so stateless renderers can carry it along.
type Button struct {
	Kind     ButtonKind
	Label    string
	Target   int
	Start    int
	Disabled bool
	Active   bool
}

// Plan lays out the pager row: first, previous, the visible pages, next and
// last. Page labels are 1-based.
func (w *Window) Plan() []Button {
	if w.totalPages == 0 {
		return nil
	}
	last := w.totalPages - 1
	buttons := make([]Button, 0, w.size+5)
	buttons = append(buttons,
		w.button(ButtonFirst, "<<", 0, !w.CanPrevious()),
		w.button(ButtonPrevious, "<", w.current-1, !w.CanPrevious()),
	)
	for _, page := range w.Visible() {
		b := w.button(ButtonPage, strconv.Itoa(page+1), page, false)
		b.Active = page == w.current
		buttons = append(buttons, b)
	}
	buttons = append(buttons,
		w.button(ButtonNext, ">", w.current+1, !w.CanNext()),
		w.button(ButtonLast, ">>", last, !w.CanNext()),
	)
	return buttons
}

func (w *Window) button(kind ButtonKind, label string, target int, disabled bool) Button {
	b := Button{Kind: kind, Label: label, Target: target, Disabled: disabled}
	if !disabled {
		b.Start = w.Peek(target)
	}
	return b
}
