package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfhsdash/internal/shared/testutil"
)

func TestFileValidator_ValidateSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("STATE,nfhs\n"), 0644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		want    SourceKind
		wantErr error
	}{
		{"workbook", write("survey.xlsx"), KindWorkbook, nil},
		{"macro workbook upper case", write("SURVEY.XLSM"), KindWorkbook, nil},
		{"csv", write("survey.csv"), KindCSV, nil},
		{"json", write("survey.json"), 0, ErrUnsupportedType},
		{"lock file", write("~$survey.xlsx"), 0, ErrLockFile},
		{"directory", dir, 0, ErrNotAFile},
		{"missing", filepath.Join(dir, "absent.xlsx"), 0, os.ErrNotExist},
	}

	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := v.ValidateSource(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data", "exports")
		require.NoError(t, v.ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file is removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "exports")
		require.NoError(t, os.WriteFile(file, nil, 0644))

		err := v.ValidateOutputDirectory(file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create output directory")
		assert.True(t, handler.ContainsMessage("Failed to create output directory"))
	})

	t.Run("read only directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

		err := v.ValidateOutputDirectory(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not writable")
	})
}

func TestNewFileValidator_NilLogger(t *testing.T) {
	v := NewFileValidator(nil)
	require.NotNil(t, v.logger)
}
