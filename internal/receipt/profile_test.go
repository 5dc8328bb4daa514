package receipt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfile_EmptyPathIsDefault(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
}

func TestLoadProfile_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.yaml")
	content := "store_name: WARUNG BU SRI\nfooter:\n  - SAMPAI JUMPA\ncolumns: 42\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "WARUNG BU SRI", p.StoreName)
	assert.Equal(t, []string{"SAMPAI JUMPA"}, p.Footer)
	assert.Equal(t, 42, p.Columns)
	assert.Equal(t, DefaultProfile().StoreAddress, p.StoreAddress)
	assert.Equal(t, 330, p.BaseHeightPx)
}

func TestLoadProfile_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("columns: 4\n"), 0o600))
	_, err = LoadProfile(bad)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("store_name: [unclosed\n"), 0o600))
	_, err = LoadProfile(broken)
	assert.Error(t, err)
}
