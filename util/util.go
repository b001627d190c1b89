package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}

// FileExists returns true if the file at path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExpandTilde expands a leading ~ in filePath to the current user's
// home directory.
func ExpandTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, strings.TrimPrefix(filePath, "~")), nil
}

// LooksSafeToDelete returns true if path looks safe to delete: it must
// be at least minLength chars long and contain at least minSeparators
// path separators. This keeps a bad config value from deleting
// something like "/" or "/home".
func LooksSafeToDelete(path string, minLength, minSeparators int) bool {
	separator := string(os.PathSeparator)
	count := strings.Count(path, separator)
	return len(path) >= minLength && count >= minSeparators
}

// TestsAreRunning returns true when running under "go test".
func TestsAreRunning() bool {
	return strings.HasSuffix(os.Args[0], ".test") ||
		strings.Contains(os.Args[0], "/_test/") ||
		runtime.Compiler == "does-not-exist"
}
