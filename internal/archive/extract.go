// Package archive unpacks the mailed ZIP deliveries into the processing
// directory. The standard library zip reader covers everything needed here.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks one archive into destDir and returns the extracted entry
// names. The archive is removed after a successful extraction; a failed
// removal is logged and ignored.
func Extract(zipPath, destDir string, logger *slog.Logger) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	var names []string
	for _, entry := range r.File {
		if err := extractEntry(entry, destDir); err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to extract %s from %s: %w", entry.Name, zipPath, err)
		}
		if !entry.FileInfo().IsDir() {
			names = append(names, entry.Name)
		}
	}
	r.Close()

	if err := os.Remove(zipPath); err != nil {
		logger.Warn("could not remove extracted archive",
			slog.String("archive", zipPath),
			slog.String("error", err.Error()))
	}
	return names, nil
}

// ExtractAll unpacks every archive, skipping and logging the ones that
// fail. One unreadable delivery must not abort the batch.
func ExtractAll(zipPaths []string, destDir string, logger *slog.Logger) []string {
	var names []string
	for _, zipPath := range zipPaths {
		extracted, err := Extract(zipPath, destDir, logger)
		if err != nil {
			logger.Warn("skipping archive",
				slog.String("archive", zipPath),
				slog.String("error", err.Error()))
			continue
		}
		logger.Info("extracted archive",
			slog.String("archive", zipPath),
			slog.Int("entries", len(extracted)))
		names = append(names, extracted...)
	}
	return names
}

func extractEntry(entry *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.Clean(entry.Name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("entry escapes destination directory")
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
