package parselib

// Cursor is an immutable view of the input that remains to be parsed.
// Advancing a cursor returns a new cursor; the receiver is never changed.
type Cursor[E comparable] struct {
	items  []E
	offset int
}

// NewCursor creates a cursor positioned at the start of items.
func NewCursor[E comparable](items []E) Cursor[E] {
	return Cursor[E]{items: items}
}

// NewRuneCursor creates a cursor over the runes of a string.
func NewRuneCursor(input string) Cursor[rune] {
	return NewCursor([]rune(input))
}

// Empty reports whether no input remains.
func (c Cursor[E]) Empty() bool {
	return c.offset >= len(c.items)
}

// Len returns the number of remaining elements.
func (c Cursor[E]) Len() int {
	return len(c.items) - c.offset
}

// Offset returns how many elements of the underlying sequence precede the cursor.
func (c Cursor[E]) Offset() int {
	return c.offset
}

// Front returns the first remaining element. It panics on an empty cursor.
func (c Cursor[E]) Front() E {
	return c.items[c.offset]
}

// At returns the i'th remaining element.
func (c Cursor[E]) At(i int) E {
	return c.items[c.offset+i]
}

// Advance returns a cursor with the first n remaining elements sliced off.
func (c Cursor[E]) Advance(n int) Cursor[E] {
	if n > c.Len() {
		n = c.Len()
	}
	return Cursor[E]{items: c.items, offset: c.offset + n}
}

// Take returns a copy of the next n elements without advancing.
func (c Cursor[E]) Take(n int) []E {
	if n > c.Len() {
		n = c.Len()
	}
	out := make([]E, n)
	copy(out, c.items[c.offset:c.offset+n])
	return out
}

// Remaining returns the remaining elements. The slice aliases the input and must not be modified.
func (c Cursor[E]) Remaining() []E {
	return c.items[c.offset:]
}

// HasPrefix reports whether the remaining input starts with prefix.
func (c Cursor[E]) HasPrefix(prefix []E) bool {
	if len(prefix) > c.Len() {
		return false
	}
	for i, e := range prefix {
		if c.At(i) != e {
			return false
		}
	}
	return true
}

// Equal compares two cursors by value: they are equal when the same elements remain.
func (c Cursor[E]) Equal(other Cursor[E]) bool {
	if c.Len() != other.Len() {
		return false
	}
	if c.offset == other.offset && len(c.items) == len(other.items) &&
		(len(c.items) == 0 || &c.items[0] == &other.items[0]) {
		return true
	}
	for i := 0; i < c.Len(); i++ {
		if c.At(i) != other.At(i) {
			return false
		}
	}
	return true
}
