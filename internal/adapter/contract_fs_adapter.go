// Package adapter contains infrastructure adapters for the solseed CLI.
package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "solseed.dev/pkg/solseed/internal/model"
)

// ContractFSAdapter abstracts the filesystem operations the domain layer
// needs for contract datasets and report directories. It hides direct `os`
// access so workflow logic can be tested without touching the disk.
type ContractFSAdapter interface {
	// ListFiles returns the files under root carrying the given extension
	// (e.g. ".sol"), sorted by path for deterministic iteration order.
	ListFiles(ctx context.Context, root m.Path, ext string) ([]m.Path, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content, creating parent directories as needed.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// MkdirAll creates a directory tree.
	MkdirAll(ctx context.Context, path m.Path) error
}

// LocalContractFSAdapter is the os-backed implementation.
type LocalContractFSAdapter struct{}

// NewLocalContractFSAdapter constructs a LocalContractFSAdapter.
func NewLocalContractFSAdapter() *LocalContractFSAdapter {
	return &LocalContractFSAdapter{}
}

// ListFiles walks root recursively and collects files with the extension.
func (a *LocalContractFSAdapter) ListFiles(ctx context.Context, root m.Path, ext string) ([]m.Path, error) {
	var out []m.Path

	err := filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}

		out = append(out, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s files under %s: %w", ext, root, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

// ReadFile loads a file's contents.
func (a *LocalContractFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return content, nil
}

// WriteFile writes content to path, creating parent directories first.
func (a *LocalContractFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}

	if err := os.WriteFile(string(path), content, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// MkdirAll creates the directory tree at path.
func (a *LocalContractFSAdapter) MkdirAll(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(string(path), 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}

	return nil
}
