package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listZips returns the ZIP archives sitting in dir, sorted by name. A
// missing directory means nothing to do, not an error.
func listZips(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var zips []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".zip") {
			zips = append(zips, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(zips)
	return zips, nil
}
