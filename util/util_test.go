package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CatchLog/harvest-services/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListContains(t *testing.T) {
	list := []string{"apple", "orange", "banana"}
	assert.True(t, util.StringListContains(list, "orange"))
	assert.False(t, util.StringListContains(list, "wedgewood"))
	assert.False(t, util.StringListContains(nil, "apple"))
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exists.txt")
	require.Nil(t, os.WriteFile(path, []byte("x"), 0644))
	assert.True(t, util.FileExists(path))
	assert.False(t, util.FileExists(path+".nope"))
}

func TestExpandTilde(t *testing.T) {
	expanded, err := util.ExpandTilde("~/tmp")
	require.Nil(t, err)
	assert.True(t, len(expanded) > len("/tmp"))
	assert.True(t, filepath.IsAbs(expanded))

	unchanged, err := util.ExpandTilde("/var/tmp")
	require.Nil(t, err)
	assert.Equal(t, "/var/tmp", unchanged)
}

func TestLooksSafeToDelete(t *testing.T) {
	assert.True(t, util.LooksSafeToDelete("/var/run/harvest/some_dir", 15, 3))
	assert.False(t, util.LooksSafeToDelete("/", 15, 3))
	assert.False(t, util.LooksSafeToDelete("/home", 15, 3))
}

func TestTestsAreRunning(t *testing.T) {
	assert.True(t, util.TestsAreRunning())
}
