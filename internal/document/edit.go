package document

// ReplaceRange replaces [start, end) with text.
//
// A cursor at or after end moves with the text; a cursor inside the
// replaced range lands after the inserted text. The selection is collapsed
// onto the cursor.
func (d *Document) ReplaceRange(start, end int, text string) error {
	text = normalizeLineEndings(text)

	d.mu.Lock()
	if start < 0 || start > end || end > len(d.text) {
		d.mu.Unlock()
		return ErrRangeInvalid
	}
	ch := d.replaceLocked(start, end, text)
	listeners := d.listeners
	d.mu.Unlock()

	notify(listeners, ch)
	return nil
}

// ReplaceSelection replaces the selection with text and leaves the cursor
// after it. With an empty selection it inserts at the cursor.
func (d *Document) ReplaceSelection(text string) error {
	d.mu.RLock()
	start, end := d.selStart, d.selEnd
	if start == end {
		start, end = d.cursor, d.cursor
	}
	d.mu.RUnlock()
	return d.ReplaceRange(start, end, text)
}

// Insert types text at the cursor, replacing any selection.
func (d *Document) Insert(text string) {
	_ = d.ReplaceSelection(text)
}

// Backspace deletes the selection, or the rune before the cursor.
func (d *Document) Backspace() {
	d.mu.RLock()
	start, end, cursor := d.selStart, d.selEnd, d.cursor
	text := d.text
	d.mu.RUnlock()

	if start == end {
		if cursor == 0 {
			return
		}
		start, end = cursor-1, cursor
		for start > 0 && text[start]&0xC0 == 0x80 {
			start--
		}
	}
	_ = d.ReplaceRange(start, end, "")
}

func (d *Document) replaceLocked(start, end int, text string) Change {
	d.text = d.text[:start] + text + d.text[end:]
	d.version++

	delta := len(text) - (end - start)
	switch {
	case d.cursor >= end:
		d.cursor += delta
	case d.cursor > start:
		d.cursor = start + len(text)
	}
	d.selStart, d.selEnd = d.cursor, d.cursor

	return Change{Start: start, OldEnd: end, NewText: text, Version: d.version}
}

func notify(listeners []func(Change), ch Change) {
	for _, fn := range listeners {
		fn(ch)
	}
}
