package media

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/lysyi3m/news-importer/app/database"
)

// Importer downloads remote images into the uploads filesystem and records them
type Importer struct {
	fs        afero.Fs
	repo      database.MediaRepository
	client    *http.Client
	userAgent string
	language  string
	resizer   Resizer

	// Now is used for the Y/n/j directory partitioning
	Now func() time.Time
}

func NewImporter(fs afero.Fs, repo database.MediaRepository, client *http.Client, userAgent, language string, resizer Resizer) *Importer {
	if client == nil {
		client = http.DefaultClient
	}
	if resizer == nil {
		resizer = NopResizer{}
	}
	return &Importer{
		fs:        fs,
		repo:      repo,
		client:    client,
		userAgent: userAgent,
		language:  language,
		resizer:   resizer,
		Now:       time.Now,
	}
}

// Import stores remoteURL locally and returns the media record ID. A remote file
// whose basename was imported before is not downloaded again.
func (i *Importer) Import(ctx context.Context, remoteURL string) (int64, error) {
	remoteURL = strings.TrimSpace(remoteURL)

	stripped, _, _ := strings.Cut(remoteURL, "?")
	ext := strings.TrimPrefix(path.Ext(stripped), ".")
	if ext == "" {
		return 0, &ImportError{URL: remoteURL, Err: ErrMissingExtension}
	}

	fn := Fingerprint(path.Base(stripped))

	existing, err := i.repo.GetMediaBySlug(ctx, fn)
	if err != nil {
		return 0, &ImportError{URL: remoteURL, Err: err}
	}
	if existing != nil {
		slog.Debug("Media cache hit", "url", remoteURL, "media_id", existing.ID)
		return existing.ID, nil
	}

	data, err := i.download(ctx, remoteURL)
	if err != nil {
		return 0, &ImportError{URL: remoteURL, Err: err}
	}

	now := i.Now()
	dir := fmt.Sprintf("%d/%d/%d", now.Year(), int(now.Month()), now.Day())
	relPath := dir + "/" + fn + "." + ext

	if err := i.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, &ImportError{URL: remoteURL, Err: fmt.Errorf("%w: %v", ErrStorage, err)}
	}
	if err := afero.WriteFile(i.fs, relPath, data, 0o644); err != nil {
		return 0, &ImportError{URL: remoteURL, Err: fmt.Errorf("%w: %v", ErrStorage, err)}
	}

	file := &database.MediaFile{
		Slug:     fn,
		Path:     relPath,
		Language: i.language,
	}
	if err := i.repo.CreateMedia(ctx, file); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			if existing, lookupErr := i.repo.GetMediaBySlug(ctx, fn); lookupErr == nil && existing != nil {
				return existing.ID, nil
			}
		}
		return 0, &ImportError{URL: remoteURL, Err: err}
	}

	if err := i.resizer.Resize(i.fs, relPath); err != nil {
		slog.Warn("Failed to resize media", "path", relPath, "error", err)
	}

	slog.Debug("Media imported", "url", remoteURL, "path", relPath, "media_id", file.ID)

	return file.ID, nil
}

func (i *Importer) download(ctx context.Context, remoteURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", remoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyBody
	}

	return data, nil
}

// Fingerprint is the hex md5 of a remote file name, used as file name and slug
func Fingerprint(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}
