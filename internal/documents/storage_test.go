package documents

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	abs, err := store.Save("doc.pdf", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.True(t, store.Exists("doc.pdf"))

	data, err := store.ReadFile("doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)

	require.NoError(t, store.Remove("doc.pdf"))
	assert.False(t, store.Exists("doc.pdf"))
}

func TestDiskStoreCreatesSignatureDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	_, err = store.Save(filepath.Join(SignatureDir, "sig.png"), []byte("png"))
	require.NoError(t, err)
	assert.True(t, store.Exists(filepath.Join(SignatureDir, "sig.png")))
}

func TestStoredNameKeepsExtension(t *testing.T) {
	assert.Equal(t, ".pdf", filepath.Ext(StoredName("contract.pdf")))
	assert.Equal(t, ".png", filepath.Ext(StoredName("scrawl.png")))
	assert.NotEqual(t, StoredName("a.pdf"), StoredName("a.pdf"))
}

func TestSignedVariant(t *testing.T) {
	assert.Equal(t, "contract_signed.pdf", signedVariant("contract.pdf"))
	assert.Equal(t, filepath.Join("uploads", "x_signed.pdf"), signedVariant(filepath.Join("uploads", "x.pdf")))
}
