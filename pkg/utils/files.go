package utils

import (
	"path/filepath"
	"strings"
)

// GetPathInfo resolves relPath to an absolute path and its directory.
func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath swaps the extension of input for ext, keeping the directory.
// game.json -> game.asm
func OutputPath(input, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
