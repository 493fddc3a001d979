package document

import "strings"

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return strings.Count(d.text, "\n") + 1
}

// Line returns line n without its newline, or "" if n is out of range.
func (d *Document) Line(n int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	start, end, ok := lineBounds(d.text, n)
	if !ok {
		return ""
	}
	return d.text[start:end]
}

// OffsetToPosition converts an offset into a line and byte column.
// Out-of-range offsets are clamped.
func (d *Document) OffsetToPosition(offset int) (line, col int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	offset = max(0, min(offset, len(d.text)))
	before := d.text[:offset]
	line = strings.Count(before, "\n")
	col = offset - (strings.LastIndexByte(before, '\n') + 1)
	return line, col
}

// PositionToOffset converts a line and byte column into an offset. Lines
// past the end map to the end of the text; columns past the end of the
// line map to the end of that line.
func (d *Document) PositionToOffset(line, col int) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if line < 0 {
		return 0
	}
	start, end, ok := lineBounds(d.text, line)
	if !ok {
		return len(d.text)
	}
	return start + max(0, min(col, end-start))
}

// IsEndOfLine reports whether offset sits at the end of its line.
func (d *Document) IsEndOfLine(offset int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if offset < 0 || offset > len(d.text) {
		return false
	}
	return offset == len(d.text) || d.text[offset] == '\n'
}

// lineBounds returns the byte range of line n, excluding its newline.
func lineBounds(text string, n int) (start, end int, ok bool) {
	if n < 0 {
		return 0, 0, false
	}
	for i := 0; i < n; i++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return 0, 0, false
		}
		start += nl + 1
	}
	end = len(text)
	if nl := strings.IndexByte(text[start:], '\n'); nl >= 0 {
		end = start + nl
	}
	return start, end, true
}
