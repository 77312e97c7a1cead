package vers

// Handle is a first-class version number. Beyond its integer value it
// reports which versions are retrievable from the object it came from: a
// record's handle spans every version of the chain (default upgrade edges
// guarantee connectivity down to version 1), while a view's handle spans
// only the view's own target version.
type Handle struct {
	value int
	floor int
}

// Value returns the version number as a plain integer.
func (h Handle) Value() int {
	return h.value
}

// Compare orders the handle against an integer version, returning -1, 0, or
// +1 in the manner of strings.Compare.
func (h Handle) Compare(v int) int {
	switch {
	case h.value < v:
		return -1
	case h.value > v:
		return 1
	default:
		return 0
	}
}

// Equals reports whether the handle's version equals v.
func (h Handle) Equals(v int) bool {
	return h.value == v
}

// Contains reports whether version v is retrievable from the owning object.
func (h Handle) Contains(v int) bool {
	return v >= h.floor && v <= h.value
}

// Len returns the number of retrievable versions.
func (h Handle) Len() int {
	return h.value - h.floor + 1
}

// Available returns the retrievable version numbers in ascending order.
func (h Handle) Available() []int {
	out := make([]int, 0, h.Len())
	for v := h.floor; v <= h.value; v++ {
		out = append(out, v)
	}
	return out
}
