package structure

import (
	"context"
	"fmt"
)

// Directory is an ordered collection of uniquely named children.
// Children are written in insertion order.
type Directory struct {
	name     string
	children []Writable
	index    map[string]int
	path     string
	prepared bool
}

// NewDirectory creates an empty directory named name.
func NewDirectory(name string) (*Directory, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Directory{name: name, index: make(map[string]int)}, nil
}

// MustNewDirectory is NewDirectory for names known to be valid.
func MustNewDirectory(name string) *Directory {
	d, err := NewDirectory(name)
	if err != nil {
		panic(err)
	}
	return d
}

// NewRootDirectory creates the unnamed directory standing for the output
// root. It does not add a segment to the ancestry of its children.
func NewRootDirectory() *Directory {
	return &Directory{index: make(map[string]int)}
}

// Name implements Writable.
func (d *Directory) Name() string {
	return d.name
}

// IsRoot reports whether d is the output root.
func (d *Directory) IsRoot() bool {
	return d.name == ""
}

// Path returns the resolved path, or "" before Prepare.
func (d *Directory) Path() string {
	return d.path
}

// AddWritable appends a child. Names must be unique among siblings.
func (d *Directory) AddWritable(w Writable) error {
	if _, exists := d.index[w.Name()]; exists {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateName, w.Name(), d.name)
	}
	d.index[w.Name()] = len(d.children)
	d.children = append(d.children, w)
	return nil
}

// Children returns the children in insertion order.
func (d *Directory) Children() []Writable {
	out := make([]Writable, len(d.children))
	copy(out, d.children)
	return out
}

// Prepare implements Writable.
func (d *Directory) Prepare(ctx context.Context, ancestors Ancestry) error {
	self := ancestors
	if !d.IsRoot() {
		self = ancestors.Push(d.name)
	}
	d.path = self.Path()

	for _, child := range d.children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := child.Prepare(ctx, self); err != nil {
			return fmt.Errorf("prepare %s: %w", child.Name(), err)
		}
	}
	d.prepared = true
	return nil
}

// Write implements Writable. The directory is created before its children.
func (d *Directory) Write(ctx context.Context, sink Sink) error {
	if !d.prepared {
		return fmt.Errorf("directory %s: %w", d.name, ErrNotPrepared)
	}
	if err := sink.MakeDir(d.path); err != nil {
		return err
	}
	for _, child := range d.children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := child.Write(ctx, sink); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls fn for every node below d, depth first in insertion order.
func (d *Directory) Walk(fn func(Writable) error) error {
	for _, child := range d.children {
		if err := fn(child); err != nil {
			return err
		}
		if sub, ok := child.(interface{ Walk(func(Writable) error) error }); ok {
			if err := sub.Walk(fn); err != nil {
				return err
			}
		}
	}
	return nil
}
