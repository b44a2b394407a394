package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/reglet-dev/distribution/internal/application/errors"
	"github.com/reglet-dev/distribution/internal/application/ports"
	"github.com/reglet-dev/distribution/internal/domain/structure"
	"github.com/reglet-dev/distribution/internal/domain/values"
)

// Entry is the load/validate outcome of one key.
type Entry struct {
	Err    error
	Key    string
	Source string
	State  values.EntryState
}

// ValidatedDirectoryOptions configures a ValidatedDirectory.
type ValidatedDirectoryOptions[T any] struct {
	Source       ports.ParametersSource
	Loader       ports.ConfigLoader[T]
	Validator    ports.ConfigValidator[T]
	Encoder      ports.PayloadEncoder[T]
	Logger       *slog.Logger
	Name         string
	IndexName    string
	ArtifactName string
	Keys         []string
	// Concurrency bounds the keys loaded and validated at once; 0 means no limit.
	Concurrency int
}

// ValidatedDirectory is a directory whose children are decided per key.
// Every key that loads and validates gets a subdirectory holding one
// artifact; every other key is dropped. The index listing the emitted
// keys is always present.
type ValidatedDirectory[T any] struct {
	*structure.Directory

	opts    ValidatedDirectoryOptions[T]
	entries []Entry
	built   bool
}

// NewValidatedDirectory creates the directory. Nothing is loaded until Prepare.
func NewValidatedDirectory[T any](opts ValidatedDirectoryOptions[T]) (*ValidatedDirectory[T], error) {
	dir, err := structure.NewDirectory(opts.Name)
	if err != nil {
		return nil, err
	}
	if err := structure.ValidateName(opts.IndexName); err != nil {
		return nil, fmt.Errorf("index name: %w", err)
	}
	if err := structure.ValidateName(opts.ArtifactName); err != nil {
		return nil, fmt.Errorf("artifact name: %w", err)
	}
	if opts.Source == nil || opts.Loader == nil || opts.Validator == nil || opts.Encoder == nil {
		return nil, errors.New("validated directory requires a source, loader, validator and encoder")
	}
	for _, key := range opts.Keys {
		if key == opts.IndexName {
			return nil, fmt.Errorf("index name %q: %w", key, structure.ErrDuplicateName)
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ValidatedDirectory[T]{Directory: dir, opts: opts}, nil
}

// Prepare loads and validates every key on first use, then prepares the
// resulting children. Later calls only re-resolve paths.
func (d *ValidatedDirectory[T]) Prepare(ctx context.Context, ancestors structure.Ancestry) error {
	if !d.built {
		if err := d.build(ctx); err != nil {
			return err
		}
		d.built = true
	}
	return d.Directory.Prepare(ctx, ancestors)
}

// Entries returns the per-key outcomes in key order.
func (d *ValidatedDirectory[T]) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// ReadyKeys returns the sorted keys that reached the ready state.
func (d *ValidatedDirectory[T]) ReadyKeys() []string {
	return readyKeys(d.entries)
}

func readyKeys(entries []Entry) []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.State.IsReady() {
			keys = append(keys, e.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (d *ValidatedDirectory[T]) build(ctx context.Context) error {
	entries := make([]Entry, len(d.opts.Keys))
	results := make([][]byte, len(d.opts.Keys))

	g, gctx := errgroup.WithContext(ctx)
	if d.opts.Concurrency > 0 {
		g.SetLimit(d.opts.Concurrency)
	}
	for i, key := range d.opts.Keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, payload, err := d.process(gctx, key)
			if err != nil {
				return err
			}
			entries[i] = entry
			results[i] = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	payloads := make(map[string][]byte)
	for i, entry := range entries {
		if entry.State.IsReady() {
			payloads[entry.Key] = results[i]
		}
	}

	// Children are staged so a failed build leaves the directory untouched.
	staged, err := structure.NewDirectory(d.Name())
	if err != nil {
		return err
	}
	index, err := encodeIndex(readyKeys(entries))
	if err != nil {
		return err
	}
	indexFile, err := structure.NewFile(d.opts.IndexName, index)
	if err != nil {
		return err
	}
	if err := staged.AddWritable(indexFile); err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.State.IsReady() {
			continue
		}
		sub, err := structure.NewDirectory(entry.Key)
		if err != nil {
			return err
		}
		artifact, err := structure.NewFile(d.opts.ArtifactName, payloads[entry.Key])
		if err != nil {
			return err
		}
		if err := sub.AddWritable(artifact); err != nil {
			return err
		}
		if err := staged.AddWritable(sub); err != nil {
			return err
		}
	}

	d.Directory = staged
	d.entries = entries
	d.opts.Logger.Info("validated directory prepared",
		"directory", d.Name(),
		"keys", len(d.opts.Keys),
		"ready", len(payloads))
	return nil
}

// process runs one key through Unloaded -> LoadFailed | ValidationFailed | Ready.
// Only encoding failures are returned as errors.
func (d *ValidatedDirectory[T]) process(ctx context.Context, key string) (Entry, []byte, error) {
	entry := Entry{
		Key:    key,
		Source: d.opts.Source.ParametersFile(key),
		State:  values.EntryUnloaded,
	}
	logger := d.opts.Logger.With("key", key, "source", entry.Source)

	cfg, err := d.opts.Loader.Load(ctx, entry.Source)
	if err != nil {
		entry.State = values.EntryLoadFailed
		entry.Err = apperrors.NewConfigLoadError(key, entry.Source, err)
		logger.Warn("config could not be loaded, skipping", "error", err)
		return entry, nil, nil
	}

	if err := d.opts.Validator.Validate(ctx, cfg); err != nil {
		entry.State = values.EntryValidationFailed
		entry.Err = apperrors.NewConfigValidationError(key, err, validationDetails(err)...)
		logger.Warn("config failed validation, skipping", "error", err)
		return entry, nil, nil
	}

	payload, err := d.opts.Encoder.Encode(cfg)
	if err != nil {
		return entry, nil, fmt.Errorf("encode config for %s: %w", key, err)
	}

	entry.State = values.EntryReady
	logger.Debug("config ready", "bytes", len(payload))
	return entry, payload, nil
}

func encodeIndex(keys []string) ([]byte, error) {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return data, nil
}

// validationDetails flattens an aggregated validation error into one line per violation.
func validationDetails(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		details := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			details = append(details, e.Error())
		}
		return details
	}
	return []string{err.Error()}
}
