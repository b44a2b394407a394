package structure

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotPrepared is returned by Write when Prepare has not run.
	ErrNotPrepared = errors.New("writable has not been prepared")

	// ErrDuplicateName is returned when a directory already holds a child
	// with the same name.
	ErrDuplicateName = errors.New("duplicate name in directory")

	// ErrInvalidName is returned for names that are not a single path segment.
	ErrInvalidName = errors.New("invalid name")

	// ErrPathCollision is returned when two artifacts resolve to the same path.
	ErrPathCollision = errors.New("path already written")
)

// Writable is a node of the output tree. The two implementations are
// *Directory and *File.
type Writable interface {
	// Name returns the path segment of this node.
	Name() string

	// Prepare resolves the node's path below ancestors and decides which
	// children exist. It never touches the output filesystem and may be
	// called more than once.
	Prepare(ctx context.Context, ancestors Ancestry) error

	// Write emits the node to sink. Prepare must have run first.
	Write(ctx context.Context, sink Sink) error
}

// Sink receives the directories and files of a prepared tree.
// Paths are slash-separated and relative to the output root; "" is the root.
type Sink interface {
	MakeDir(path string) error
	WriteFile(path string, data []byte) error
}

// ValidateName checks that name is usable as a single path segment.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
