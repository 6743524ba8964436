package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"terrasur_app_go/config"

	"github.com/stretchr/testify/assert"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "hello storage"
	key := "uploads/2026/08/file.jpg"
	size := int64(len(content))

	t.Run("UploadReader creates file", func(t *testing.T) {
		reader := strings.NewReader(content)
		result, err := storage.UploadReader(ctx, reader, key, "image/jpeg", size)
		assert.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, size, result.FileSize)
		assert.Equal(t, "file.jpg", result.FileName)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves file content", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		assert.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, "image/jpeg", contentType)
	})

	t.Run("Get detects MIME types by extension", func(t *testing.T) {
		pngKey := "uploads/2026/08/plano.png"
		storage.UploadReader(ctx, strings.NewReader("fake-png"), pngKey, "image/png", 8)

		_, contentType, err := storage.Get(ctx, pngKey)
		assert.NoError(t, err)
		assert.Equal(t, "image/png", contentType)

		webpKey := "uploads/2026/08/vista.webp"
		storage.UploadReader(ctx, strings.NewReader("fake-webp"), webpKey, "image/webp", 9)
		_, contentType, err = storage.Get(ctx, webpKey)
		assert.NoError(t, err)
		assert.Equal(t, "image/webp", contentType)
	})

	t.Run("Delete removes file", func(t *testing.T) {
		err := storage.Delete(ctx, key)
		assert.NoError(t, err)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Delete tolerates a missing file", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, "uploads/never/was/here.jpg"))
	})

	t.Run("Public URL", func(t *testing.T) {
		expected := "/" + filepath.Join(tempDir, "some/key")
		assert.Equal(t, expected, storage.GetPublicURL("some/key"))
	})

	t.Run("IsConfigured", func(t *testing.T) {
		assert.True(t, storage.IsConfigured())
	})
}

func TestInitializeStorage(t *testing.T) {
	t.Run("Falls back to local when R2 is not configured", func(t *testing.T) {
		cfg := &config.Config{UploadDir: t.TempDir()}
		InitializeStorage(cfg)

		_, ok := Storage.(*LocalStorage)
		assert.True(t, ok)
	})
}

func TestR2PublicURL(t *testing.T) {
	r2 := &R2Storage{bucket: "fotos", publicURL: "https://cdn.terrasur.test/"}
	assert.Equal(t, "https://cdn.terrasur.test/uploads/a.jpg", r2.GetPublicURL("uploads/a.jpg"))

	unconfigured := &R2Storage{bucket: "fotos"}
	assert.Equal(t, "", unconfigured.GetPublicURL("uploads/a.jpg"))
}
