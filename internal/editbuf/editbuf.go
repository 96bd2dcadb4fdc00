// Package editbuf implements the single-line edit buffer used to compose
// outgoing input.
package editbuf

// MaxLen is the maximum number of characters the buffer holds; inserts
// at capacity are no-ops.
const MaxLen = 1000

// Buffer is a mutable single-line text buffer with a cursor. The cursor
// always sits in [0, Len()].
type Buffer struct {
	runes []rune
	pos   int
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Set replaces the buffer content with text (truncated to MaxLen) and
// places the cursor at the end.
func (b *Buffer) Set(text string) {
	runes := []rune(text)
	if len(runes) > MaxLen {
		runes = runes[:MaxLen]
	}
	b.runes = runes
	b.pos = len(runes)
}

// Insert inserts ch at the cursor, shifting the remainder right. At
// capacity it is a no-op.
func (b *Buffer) Insert(ch rune) {
	if len(b.runes) >= MaxLen {
		return
	}
	b.runes = append(b.runes, 0)
	copy(b.runes[b.pos+1:], b.runes[b.pos:])
	b.runes[b.pos] = ch
	b.pos++
}

// Backspace removes the character left of the cursor; no-op at position 0.
func (b *Buffer) Backspace() {
	if b.pos == 0 {
		return
	}
	b.runes = append(b.runes[:b.pos-1], b.runes[b.pos:]...)
	b.pos--
}

// DeleteForward removes the character under the cursor; no-op at the end.
func (b *Buffer) DeleteForward() {
	if b.pos == len(b.runes) {
		return
	}
	b.runes = append(b.runes[:b.pos], b.runes[b.pos+1:]...)
}

// MoveLeft moves the cursor one position left; no-op at 0.
func (b *Buffer) MoveLeft() {
	if b.pos > 0 {
		b.pos--
	}
}

// MoveRight moves the cursor one position right; no-op at the end.
func (b *Buffer) MoveRight() {
	if b.pos < len(b.runes) {
		b.pos++
	}
}

// Home moves the cursor to position 0.
func (b *Buffer) Home() {
	b.pos = 0
}

// End moves the cursor past the final character.
func (b *Buffer) End() {
	b.pos = len(b.runes)
}

// String returns the buffer content.
func (b *Buffer) String() string {
	return string(b.runes)
}

// Len returns the number of characters in the buffer.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// Cursor returns the cursor offset.
func (b *Buffer) Cursor() int {
	return b.pos
}

// VisibleSlice computes the horizontally scrolled view for a display of
// the given width. It returns the visible text and the cursor's on-screen
// column, which is always within [0, width].
func (b *Buffer) VisibleSlice(width int) (string, int) {
	off := 0
	if b.pos >= width {
		off = b.pos - width
	}
	return string(b.runes[off:]), b.pos - off
}
