package ingest

// DropZone counts nested drag-enter/leave events so the highlight only
// clears when the pointer has really left the zone.
type DropZone struct {
	depth int
}

// Enter records a drag entering the zone (or a child of it).
func (z *DropZone) Enter() {
	z.depth++
}

// Leave records a drag leaving. Extra leaves never drive the count negative.
func (z *DropZone) Leave() {
	if z.depth > 0 {
		z.depth--
	}
}

// Reset clears the counter, as a completed drop does.
func (z *DropZone) Reset() {
	z.depth = 0
}

// Active reports whether the zone should be highlighted.
func (z *DropZone) Active() bool {
	return z.depth > 0
}
