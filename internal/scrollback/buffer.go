// Package scrollback implements the bounded history of rendered output
// lines retained for display and scroll-back.
package scrollback

// Buffer capacity limits.
const (
	// MaxLines is the number of lines retained; appending beyond this
	// evicts the oldest line.
	MaxLines = 100

	// MaxLineLen is the number of printable characters kept per line.
	// Characters past the boundary overwrite the final slot.
	MaxLineLen = 1000
)

// Color is a basic text color index. Values 1 through 7 are the ANSI
// colors; ColorDefault is the terminal's default.
type Color int

// Color indices, matching ANSI SGR 31-37 minus 30.
const (
	ColorRed     Color = 1
	ColorGreen   Color = 2
	ColorYellow  Color = 3
	ColorBlue    Color = 4
	ColorMagenta Color = 5
	ColorCyan    Color = 6
	ColorWhite   Color = 7
	ColorDefault Color = 9
)

// Cell is one rendered character with the color that was active when it
// was appended.
type Cell struct {
	Ch    rune
	Color Color
}

// Buffer is a fixed-capacity ordered log of rendered lines. Appends past
// the capacity evict the oldest line first (FIFO). All operations are
// safe no-ops or truncations; none can fail.
type Buffer struct {
	lines [][]Cell
	last  int
}

// New creates an empty buffer holding MaxLines empty lines.
func New() *Buffer {
	b := &Buffer{lines: make([][]Cell, MaxLines)}
	return b
}

// Last returns the index of the line currently being written. It can
// equal MaxLines momentarily, after a newline lands on the final line
// and before the next append evicts.
func (b *Buffer) Last() int {
	return b.last
}

// Line returns the cells of line i, or nil when i is out of range.
func (b *Buffer) Line(i int) []Cell {
	if i < 0 || i >= MaxLines {
		return nil
	}
	return b.lines[i]
}

// scroll discards the oldest line, shifting every line down by one.
func (b *Buffer) scroll() {
	copy(b.lines, b.lines[1:])
	b.lines[MaxLines-1] = nil
}

// AppendChar appends one character to the current line under the given
// color and returns the updated last-line index. A '\n' ends the current
// line; the next character starts a new one. Characters past MaxLineLen
// overwrite the final slot.
func (b *Buffer) AppendChar(ch rune, color Color) int {
	if b.last == MaxLines {
		b.scroll()
		b.last--
	}

	if ch == '\n' {
		b.last++
		return b.last
	}

	line := b.lines[b.last]
	if len(line) >= MaxLineLen {
		line[MaxLineLen-1] = Cell{Ch: ch, Color: color}
	} else {
		b.lines[b.last] = append(line, Cell{Ch: ch, Color: color})
	}
	return b.last
}

// AppendLine stores text as a complete line under the given color and
// returns the updated last-line index. Text longer than MaxLineLen is
// truncated.
func (b *Buffer) AppendLine(text string, color Color) int {
	if b.last == MaxLines {
		b.scroll()
		b.last--
	}

	runes := []rune(text)
	if len(runes) > MaxLineLen {
		runes = runes[:MaxLineLen]
	}
	line := make([]Cell, len(runes))
	for i, r := range runes {
		line[i] = Cell{Ch: r, Color: color}
	}
	b.lines[b.last] = line
	b.last++
	return b.last
}

// Render visits lines [start, end] in order, clamped to buffer bounds.
// When start exceeds end after clamping, nothing is visited.
func (b *Buffer) Render(start, end int, visit func(row int, line []Cell)) {
	if start < 0 {
		start = 0
	}
	if end > MaxLines-1 {
		end = MaxLines - 1
	}
	for i := start; i <= end; i++ {
		visit(i-start, b.lines[i])
	}
}

// String returns line i as plain text, ignoring color. Mostly useful in
// tests and logging.
func (b *Buffer) String(i int) string {
	line := b.Line(i)
	runes := make([]rune, len(line))
	for j, c := range line {
		runes[j] = c.Ch
	}
	return string(runes)
}
