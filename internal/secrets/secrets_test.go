package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneheat/zoneheat/internal/errors"
)

func TestExpand(t *testing.T) {
	t.Setenv("ZH_TEST_TOKEN", "secret123")
	t.Setenv("ZH_TEST_USER", "admin")
	t.Setenv("ZH_TEST_EMPTY", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: ""},
		{name: "literal", input: "literal-value", want: "literal-value"},
		{name: "bcrypt hash untouched", input: "$2a$12$abcdefghijklmnopqrstuv", want: "$2a$12$abcdefghijklmnopqrstuv"},
		{name: "simple", input: "${ZH_TEST_TOKEN}", want: "secret123"},
		{name: "embedded", input: "postgres://${ZH_TEST_USER}:${ZH_TEST_TOKEN}@db/zones", want: "postgres://admin:secret123@db/zones"},
		{name: "fallback unused", input: "${ZH_TEST_TOKEN:-other}", want: "secret123"},
		{name: "fallback used", input: "${ZH_TEST_MISSING:-other}", want: "other"},
		{name: "empty fallback", input: "${ZH_TEST_MISSING:-}", want: ""},
		{name: "empty var counts as missing", input: "${ZH_TEST_EMPTY}", wantErr: true},
		{name: "missing", input: "key=${ZH_TEST_MISSING}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "ZH_TEST_")
				assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	good := filepath.Join(dir, "api_key")
	require.NoError(t, os.WriteFile(good, []byte("k-123\n"), 0o600))
	got, err := ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "k-123", got)

	spaced := filepath.Join(dir, "spaced")
	require.NoError(t, os.WriteFile(spaced, []byte(" keep \r\n"), 0o600))
	got, err = ReadFile(spaced)
	require.NoError(t, err)
	assert.Equal(t, " keep ", got)

	loose := filepath.Join(dir, "loose")
	require.NoError(t, os.WriteFile(loose, []byte("v"), 0o644))
	got, err = ReadFile(loose)
	require.NoError(t, err, "permissive mode only warns")
	assert.Equal(t, "v", got)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, err = ReadFile(empty)
	assert.Error(t, err)

	big := filepath.Join(dir, "big")
	require.NoError(t, os.WriteFile(big, make([]byte, maxSecretFileSize+1), 0o600))
	_, err = ReadFile(big)
	assert.Error(t, err)

	_, err = ReadFile(dir)
	assert.Error(t, err, "directories are rejected")

	_, err = ReadFile(filepath.Join(dir, "absent"))
	assert.Error(t, err)

	_, err = ReadFile("")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Setenv("ZH_TEST_DSN", "from-env")
	dir := t.TempDir()
	file := filepath.Join(dir, "dsn")
	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))

	got, err := Resolve(file, "${ZH_TEST_DSN}")
	require.NoError(t, err)
	assert.Equal(t, "from-file", got, "file wins")

	got, err = Resolve("", "${ZH_TEST_DSN}")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	got, err = Resolve("", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
