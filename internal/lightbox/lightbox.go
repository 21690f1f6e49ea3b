// Package lightbox tracks which image of the current view is enlarged.
package lightbox

// State is the lightbox position over a view of Size images. Index is -1 when closed.
type State struct {
	Index int
	Size  int
}

// Closed is the state with no image enlarged.
func Closed(size int) State { return State{Index: -1, Size: size} }

// Open enlarges image i, clamped into the view. An empty view stays closed.
func Open(size, i int) State {
	if size <= 0 {
		return Closed(0)
	}
	switch {
	case i < 0:
		i = 0
	case i >= size:
		i = size - 1
	}
	return State{Index: i, Size: size}
}

// IsOpen reports whether an image is enlarged.
func (s State) IsOpen() bool { return s.Index >= 0 && s.Index < s.Size }

// Next moves forward, wrapping from the last image to the first.
func (s State) Next() State {
	if !s.IsOpen() {
		return s
	}
	return State{Index: (s.Index + 1) % s.Size, Size: s.Size}
}

// Prev moves backward, wrapping from the first image to the last.
func (s State) Prev() State {
	if !s.IsOpen() {
		return s
	}
	return State{Index: (s.Index - 1 + s.Size) % s.Size, Size: s.Size}
}

// Close returns the closed state for the same view.
func (s State) Close() State { return Closed(s.Size) }
