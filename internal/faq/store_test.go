package faq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: Old\n    questions:\n      - question: q\n        answer: a\n"), 0600))

	doc, err := Load(path)
	require.NoError(t, err)
	store := NewStore(doc)
	held := store.Current()

	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: New\n    questions:\n      - question: q\n        answer: a\n"), 0600))
	fresh, err := store.Reload(path)
	require.NoError(t, err)

	assert.Same(t, fresh, store.Current())
	assert.NotEqual(t, held.Revision, fresh.Revision)
	assert.Equal(t, []string{"New"}, Labels(store.Current().RootCategories()))
	// A snapshot taken earlier is untouched by the reload.
	assert.Equal(t, []string{"Old"}, Labels(held.RootCategories()))
}

func TestStore_ReloadFailureKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: Keep\n"), 0600))
	doc, err := Load(path)
	require.NoError(t, err)
	store := NewStore(doc)

	require.NoError(t, os.WriteFile(path, []byte("categories: {broken"), 0600))
	_, err = store.Reload(path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Same(t, doc, store.Current())
}
