// Package localsrc loads source files from a directory tree on local storage.
package localsrc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/i2y/apicatalog/internal/domain"
)

// DefaultExtension selects Java sources.
const DefaultExtension = ".java"

// Loader walks a directory and reads every file with the configured extension.
type Loader struct {
	extension string
	logger    *slog.Logger
}

// NewLoader creates a new Loader. An empty extension selects DefaultExtension.
func NewLoader(extension string, logger *slog.Logger) *Loader {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Loader{
		extension: extension,
		logger:    logger.With("component", "local_source_loader"),
	}
}

// Load implements usecase.SourceLoader. Files are returned in lexical path
// order; unreadable files and directories become skipped load diagnostics.
func (l *Loader) Load(ctx context.Context, root string) ([]domain.SourceFile, []domain.Diagnostic, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open source root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("source root %s is not a directory", root)
	}

	var (
		files       []domain.SourceFile
		diagnostics []domain.Diagnostic
	)
	skip := func(path string, err error) {
		rel := relPath(root, path)
		l.logger.Warn("Skipping unreadable path", slog.String("path", rel), slog.Any("error", err))
		diagnostics = append(diagnostics, domain.Diagnostic{
			Unit:    rel,
			Phase:   domain.PhaseLoad,
			Message: err.Error(),
			Skipped: true,
		})
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			skip(path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || filepath.Ext(path) != l.extension {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			skip(path, err)
			return nil
		}
		files = append(files, domain.SourceFile{
			Name:    d.Name(),
			Path:    relPath(root, path),
			Content: content,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	l.logger.Debug("Loaded source files", slog.String("root", root), slog.Int("count", len(files)), slog.Int("skipped", len(diagnostics)))
	return files, diagnostics, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
