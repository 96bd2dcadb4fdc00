package editbuf

import (
	"strings"
	"testing"
)

// checkInvariant verifies 0 <= cursor <= length <= MaxLen.
func checkInvariant(t *testing.T, b *Buffer) {
	t.Helper()
	if b.Cursor() < 0 || b.Cursor() > b.Len() {
		t.Fatalf("cursor %d outside [0, %d]", b.Cursor(), b.Len())
	}
	if b.Len() > MaxLen {
		t.Fatalf("length %d exceeds MaxLen", b.Len())
	}
}

func TestSetPlacesCursorAtEnd(t *testing.T) {
	b := New()
	b.Set("hello")

	if b.String() != "hello" {
		t.Errorf("String() = %q, want %q", b.String(), "hello")
	}
	if b.Cursor() != 5 {
		t.Errorf("Cursor() = %d, want 5", b.Cursor())
	}
	checkInvariant(t, b)
}

func TestSetTruncates(t *testing.T) {
	b := New()
	b.Set(strings.Repeat("a", MaxLen+100))

	if b.Len() != MaxLen {
		t.Errorf("Len() = %d, want %d", b.Len(), MaxLen)
	}
	checkInvariant(t, b)
}

func TestInsertMidLine(t *testing.T) {
	b := New()
	b.Set("hllo")
	b.Home()
	b.MoveRight()
	b.Insert('e')

	if b.String() != "hello" {
		t.Errorf("String() = %q, want %q", b.String(), "hello")
	}
	if b.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", b.Cursor())
	}
}

func TestInsertAtCapacityIsNoop(t *testing.T) {
	b := New()
	b.Set(strings.Repeat("a", MaxLen))
	b.Insert('b')

	if b.Len() != MaxLen {
		t.Errorf("Len() = %d, want %d", b.Len(), MaxLen)
	}
	if strings.ContainsRune(b.String(), 'b') {
		t.Error("insert at capacity modified the buffer")
	}
}

func TestBackspace(t *testing.T) {
	b := New()
	b.Set("abc")
	b.Backspace()

	if b.String() != "ab" {
		t.Errorf("String() = %q, want %q", b.String(), "ab")
	}

	b.Home()
	b.Backspace() // no-op at position 0
	if b.String() != "ab" {
		t.Errorf("String() = %q after no-op backspace, want %q", b.String(), "ab")
	}
	checkInvariant(t, b)
}

func TestBackspaceMidLine(t *testing.T) {
	b := New()
	b.Set("abc")
	b.MoveLeft()
	b.Backspace()

	if b.String() != "ac" {
		t.Errorf("String() = %q, want %q", b.String(), "ac")
	}
	if b.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want 1", b.Cursor())
	}
}

func TestDeleteForward(t *testing.T) {
	b := New()
	b.Set("abc")
	b.Home()
	b.DeleteForward()

	if b.String() != "bc" {
		t.Errorf("String() = %q, want %q", b.String(), "bc")
	}
	if b.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", b.Cursor())
	}

	b.End()
	b.DeleteForward() // no-op at end
	if b.String() != "bc" {
		t.Errorf("String() = %q after no-op delete, want %q", b.String(), "bc")
	}
}

func TestCursorMovementBounds(t *testing.T) {
	b := New()
	b.Set("ab")

	b.MoveRight() // already at end
	if b.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2", b.Cursor())
	}

	b.Home()
	b.MoveLeft() // already at 0
	if b.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0", b.Cursor())
	}
}

func TestInvariantUnderOperationSequence(t *testing.T) {
	b := New()
	ops := []func(){
		func() { b.Insert('x') },
		func() { b.Backspace() },
		func() { b.DeleteForward() },
		func() { b.MoveLeft() },
		func() { b.MoveRight() },
		func() { b.Home() },
		func() { b.End() },
		func() { b.Set("seed text") },
	}
	// Deterministic pseudo-random walk over the operation set.
	seed := 1
	for i := 0; i < 5000; i++ {
		seed = seed*1103515245 + 12345
		ops[(seed>>16&0x7fff)%len(ops)]()
		checkInvariant(t, b)
	}
}

func TestVisibleSlice(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		cursor     int // -1 means leave at end
		width      int
		wantText   string
		wantColumn int
	}{
		{"fits", "hello", -1, 20, "hello", 5},
		{"cursor at width", "0123456789", -1, 10, "0123456789", 10},
		{"scrolled", "0123456789abcdef", -1, 10, "6789abcdef", 10},
		{"cursor home", "0123456789abcdef", 0, 10, "0123456789abcdef", 0},
		{"empty", "", -1, 10, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			b.Set(tt.text)
			if tt.cursor == 0 {
				b.Home()
			}
			text, col := b.VisibleSlice(tt.width)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if col != tt.wantColumn {
				t.Errorf("column = %d, want %d", col, tt.wantColumn)
			}
			if col < 0 || col > tt.width {
				t.Errorf("column %d outside visible window [0, %d]", col, tt.width)
			}
		})
	}
}
