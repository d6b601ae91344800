package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8(t *testing.T) {
	text, err := Decode([]byte("# posição\n"))
	require.NoError(t, err)
	assert.Equal(t, "# posição\n", text)
}

func TestDecodeLatin1Fallback(t *testing.T) {
	// "posição" in ISO-8859-1
	text, err := Decode([]byte{'p', 'o', 's', 'i', 0xE7, 0xE3, 'o'})
	require.NoError(t, err)
	assert.Equal(t, "posição", text)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.script")
	require.NoError(t, os.WriteFile(path, []byte("def prog():\r\n  movej([1,2,3,4,5,60])\r\nend\r\n"), 0o644))

	lines, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"def prog():", "  movej([1,2,3,4,5,60])", "end", ""}, lines)

	cmds := Parse(lines)
	require.Len(t, cmds, 1)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 60}, cmds[0].Joints)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.script"))
	assert.True(t, os.IsNotExist(err))
}
