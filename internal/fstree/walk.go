// Package fstree enumerates the files an installed app occupies.
package fstree

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// Walk returns root followed by every path below it, depth first, with each
// directory listed before its contents. Symbolic links are listed but not
// followed, so a link pointing back up the tree cannot loop.
func Walk(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}
