package structure

import "fmt"

// DefaultChecksumSuffix is appended to an artifact name to form its sidecar name.
const DefaultChecksumSuffix = ".checksum"

// Digester maps bytes to a deterministic digest.
type Digester interface {
	// Algorithm names the digest, e.g. "sha256".
	Algorithm() string

	// Sum returns the encoded digest of data.
	Sum(data []byte) []byte
}

// ChecksumEmitter is a Sink that writes a checksum sidecar next to every
// file it passes through. A sidecar is written only after its artifact was
// written successfully.
type ChecksumEmitter struct {
	next     Sink
	digester Digester
	suffix   string
	written  map[string]struct{}
}

// NewChecksumEmitter wraps next. An empty suffix selects DefaultChecksumSuffix.
func NewChecksumEmitter(next Sink, digester Digester, suffix string) *ChecksumEmitter {
	if suffix == "" {
		suffix = DefaultChecksumSuffix
	}
	return &ChecksumEmitter{
		next:     next,
		digester: digester,
		suffix:   suffix,
		written:  make(map[string]struct{}),
	}
}

// Suffix returns the sidecar suffix.
func (e *ChecksumEmitter) Suffix() string {
	return e.suffix
}

// MakeDir implements Sink.
func (e *ChecksumEmitter) MakeDir(path string) error {
	return e.next.MakeDir(path)
}

// WriteFile implements Sink.
func (e *ChecksumEmitter) WriteFile(path string, data []byte) error {
	sidecar := path + e.suffix
	if err := e.claim(path); err != nil {
		return err
	}
	if err := e.claim(sidecar); err != nil {
		return err
	}

	if err := e.next.WriteFile(path, data); err != nil {
		return err
	}
	return e.next.WriteFile(sidecar, e.digester.Sum(data))
}

func (e *ChecksumEmitter) claim(path string) error {
	if _, ok := e.written[path]; ok {
		return fmt.Errorf("%w: %s", ErrPathCollision, path)
	}
	e.written[path] = struct{}{}
	return nil
}
