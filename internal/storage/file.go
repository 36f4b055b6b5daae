package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// FileStore keeps each dataset in its own flat file
type FileStore struct {
	paths map[Dataset]string
}

// NewFileStore creates a FileStore over the given accounts and transactions files
func NewFileStore(accountsPath, transactionsPath string) *FileStore {
	return &FileStore{paths: map[Dataset]string{
		DatasetAccounts:     accountsPath,
		DatasetTransactions: transactionsPath,
	}}
}

// Path returns the file backing a dataset
func (s *FileStore) Path(dataset Dataset) string {
	return s.paths[dataset]
}

// Open opens the dataset file. A file that does not exist yet reads as empty.
func (s *FileStore) Open(ctx context.Context, dataset Dataset) (io.ReadCloser, error) {
	path, ok := s.paths[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return io.NopCloser(strings.NewReader("")), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// Replace rewrites the dataset file
func (s *FileStore) Replace(ctx context.Context, dataset Dataset, write func(io.Writer) error) error {
	path, ok := s.paths[dataset]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}
	return replaceFile(path, write)
}

// Close is a no-op; files are opened per call
func (s *FileStore) Close() error {
	return nil
}
