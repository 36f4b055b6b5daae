// Package storage persists the ledger's fixed-width datasets. Backends only
// move lines around; encoding and validation live in the model package.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Dataset names one of the persisted record sets
type Dataset string

const (
	DatasetAccounts     Dataset = "accounts"
	DatasetTransactions Dataset = "transactions"
)

// ErrUnknownDataset is returned when a backend is asked for a dataset it has no location for
var ErrUnknownDataset = errors.New("unknown dataset")

// Store reads and rewrites whole datasets.
//
// Open on a dataset that was never written returns an empty reader.
// Replace rewrites the dataset with whatever write produces; if write fails
// the stored dataset is left as it was.
type Store interface {
	Open(ctx context.Context, dataset Dataset) (io.ReadCloser, error)
	Replace(ctx context.Context, dataset Dataset, write func(io.Writer) error) error
	Close() error
}

// OpenFile opens an existing file for import. Unlike FileStore, a missing
// file is an error here.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// WriteFile writes a file for export through the same temp-and-rename path
// the FileStore uses.
func WriteFile(path string, write func(io.Writer) error) error {
	return replaceFile(path, write)
}

// replaceFile writes to path.tmp and renames it over path once write succeeds
func replaceFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// splitLines breaks written output into lines, dropping the trailing newline
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
