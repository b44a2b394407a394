// Package structure models the output of a distribution build as a tree of
// writable nodes. A tree is built in memory, prepared top-down with an
// Ancestry, and then written to a Sink.
package structure

import (
	"path"
	"strings"
)

// Ancestry is the immutable sequence of path segments leading to a node.
// The zero value is the empty ancestry (the output root).
//
// Push never mutates the receiver, so one Ancestry can be shared by any
// number of siblings and by reentrant Prepare calls.
type Ancestry struct {
	parent  *Ancestry
	segment string
	depth   int
}

// Push returns a new Ancestry extended by segment.
func (a Ancestry) Push(segment string) Ancestry {
	parent := a
	return Ancestry{
		parent:  &parent,
		segment: segment,
		depth:   a.depth + 1,
	}
}

// Len returns the number of segments.
func (a Ancestry) Len() int {
	return a.depth
}

// IsEmpty reports whether no segment has been pushed.
func (a Ancestry) IsEmpty() bool {
	return a.depth == 0
}

// Segments returns the segments from the root down.
func (a Ancestry) Segments() []string {
	out := make([]string, a.depth)
	for cur := &a; cur != nil && cur.depth > 0; cur = cur.parent {
		out[cur.depth-1] = cur.segment
	}
	return out
}

// Path returns the slash-separated path relative to the output root.
// The empty ancestry resolves to "".
func (a Ancestry) Path() string {
	if a.depth == 0 {
		return ""
	}
	return path.Join(a.Segments()...)
}

// String implements fmt.Stringer.
func (a Ancestry) String() string {
	return "/" + strings.Join(a.Segments(), "/")
}
