package structure

import (
	"context"
	"fmt"
)

// File is a leaf artifact: a name and an immutable byte payload.
type File struct {
	name     string
	payload  []byte
	path     string
	prepared bool
}

// NewFile creates a leaf artifact. The payload is copied.
func NewFile(name string, payload []byte) (*File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &File{
		name:    name,
		payload: append([]byte(nil), payload...),
	}, nil
}

// MustNewFile is NewFile for names known to be valid.
func MustNewFile(name string, payload []byte) *File {
	f, err := NewFile(name, payload)
	if err != nil {
		panic(err)
	}
	return f
}

// Name implements Writable.
func (f *File) Name() string {
	return f.name
}

// Bytes returns a copy of the payload.
func (f *File) Bytes() []byte {
	return append([]byte(nil), f.payload...)
}

// Path returns the resolved path, or "" before Prepare.
func (f *File) Path() string {
	return f.path
}

// Prepare implements Writable.
func (f *File) Prepare(ctx context.Context, ancestors Ancestry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.path = ancestors.Push(f.name).Path()
	f.prepared = true
	return nil
}

// Write implements Writable.
func (f *File) Write(ctx context.Context, sink Sink) error {
	if !f.prepared {
		return fmt.Errorf("file %s: %w", f.name, ErrNotPrepared)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return sink.WriteFile(f.path, f.payload)
}
