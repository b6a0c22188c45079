package uploads

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "public", zap.NewNop())
	s.now = func() time.Time { return time.UnixMilli(1718000000123) }
	require.NoError(t, s.EnsureDirs())
	return s, fs
}

func TestSaveUsesTimestampName(t *testing.T) {
	s, fs := newTestStore(t)

	p, err := s.Save(KindFile, "../../evil/mod.zip", strings.NewReader("zipdata"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1718000000123.zip", p)

	data, err := afero.ReadFile(fs, "public/uploads/1718000000123.zip")
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(data))

	p, err = s.Save(KindImage, "cover.PNG", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/images/1718000000123.PNG", p)
}

func TestClearKeepsDefaultImage(t *testing.T) {
	s, fs := newTestStore(t)

	require.NoError(t, afero.WriteFile(fs, "public/uploads/a.zip", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "public/uploads/b.zip", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "public/images/c.png", []byte("c"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "public/images/default.jpg", []byte("d"), 0o644))
	require.NoError(t, fs.MkdirAll("public/uploads/nested", 0o755))

	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	exists, _ := afero.Exists(fs, "public/images/default.jpg")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "public/uploads/nested")
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, "public/uploads/a.zip")
	assert.False(t, exists)
}

func TestClearWithoutDirs(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "public", zap.NewNop())
	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFileSystemServesUploads(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Save(KindImage, "x.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	f, err := s.FileSystem(KindImage).Open("/1718000000123.jpg")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
}
