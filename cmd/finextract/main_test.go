package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/finstatement-extractor/internal/cache"
)

func TestHashCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 sample"), 0o644))

	var out bytes.Buffer
	cmd := newHashCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	want, err := cache.FingerprintFile(path)
	require.NoError(t, err)
	assert.Equal(t, want+"  "+path+"\n", out.String())
}

func TestExtractCmd_MissingFile(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "none")
	cmd := newExtractCmd()
	cmd.PersistentFlags().String("noise-file", "", "")
	cmd.PersistentFlags().String("cache", "", "")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.pdf")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
}

func TestBatchCmd_EmptyDir(t *testing.T) {
	cmd := newBatchCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{t.TempDir()})
	assert.ErrorContains(t, cmd.Execute(), "no PDF files found")
}
