package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-importer/app/database"
	"github.com/lysyi3m/news-importer/app/database/dbtest"
)

func newTestImporter(t *testing.T, client *http.Client) (*Importer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	repo := database.NewMediaRepository(dbtest.New(t))
	importer := NewImporter(fs, repo, client, "test-agent", "en", nil)
	importer.Now = func() time.Time { return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC) }
	return importer, fs
}

func TestImportStoresUnderDatePartition(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("jpeg bytes"))
	}))
	defer server.Close()

	importer, fs := newTestImporter(t, server.Client())
	ctx := context.Background()

	id, err := importer.Import(ctx, server.URL+"/images/photo.jpg?w=600")
	require.NoError(t, err)
	assert.NotZero(t, id)

	expected := "2024/3/5/" + Fingerprint("photo.jpg") + ".jpg"
	data, err := afero.ReadFile(fs, expected)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	again, err := importer.Import(ctx, server.URL+"/images/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, id, again, "same remote file name is a cache hit")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestImportRequiresExtension(t *testing.T) {
	importer, _ := newTestImporter(t, nil)

	_, err := importer.Import(context.Background(), "http://tracker.example.com/pixel?id=1")
	assert.ErrorIs(t, err, ErrMissingExtension)

	_, err = importer.Import(context.Background(), "http://cdn.example.com/v1.2/image")
	assert.ErrorIs(t, err, ErrMissingExtension, "a dot in a directory is not an extension")
	assert.ErrorIs(t, err, ErrMediaImport)
}

func TestImportEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	importer, _ := newTestImporter(t, server.Client())

	_, err := importer.Import(context.Background(), server.URL+"/empty.png")
	assert.ErrorIs(t, err, ErrEmptyBody)
	assert.ErrorIs(t, err, ErrMediaImport)
}

func TestImportStorageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	importer, _ := newTestImporter(t, server.Client())
	importer.fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := importer.Import(context.Background(), server.URL+"/a.png")
	assert.ErrorIs(t, err, ErrStorage)
}

func TestImagingResizer(t *testing.T) {
	fs := afero.NewMemMapFs()

	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, "2024/3/5/abc.png", buf.Bytes(), 0o644))

	require.NoError(t, NewImagingResizer().Resize(fs, "2024/3/5/abc.png"))

	thumb, err := fs.Open("2024/3/5/abc-150x150.png")
	require.NoError(t, err)
	defer thumb.Close()
	cfg, err := png.DecodeConfig(thumb)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Width)
	assert.Equal(t, 150, cfg.Height)

	medium, err := fs.Open("2024/3/5/abc-300x300.png")
	require.NoError(t, err)
	defer medium.Close()
	cfg, err = png.DecodeConfig(medium)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 150, cfg.Height)

	exists, err := afero.Exists(fs, "2024/3/5/abc-1024x1024.png")
	require.NoError(t, err)
	assert.False(t, exists, "small originals are not upscaled")
}
