package media

import (
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

// Resizer produces derived sizes next to a stored original
type Resizer interface {
	Resize(fs afero.Fs, relPath string) error
}

type NopResizer struct{}

func (NopResizer) Resize(afero.Fs, string) error { return nil }

type Size struct {
	Name   string
	Width  int
	Height int
	Crop   bool
}

var DefaultSizes = []Size{
	{Name: "thumbnail", Width: 150, Height: 150, Crop: true},
	{Name: "medium", Width: 300, Height: 300},
	{Name: "large", Width: 1024, Height: 1024},
}

// ImagingResizer writes "<name>-<W>x<H>.<ext>" variants for each configured size.
// Originals smaller than a fit size are not upscaled.
type ImagingResizer struct {
	Sizes []Size
}

func NewImagingResizer() *ImagingResizer {
	return &ImagingResizer{Sizes: DefaultSizes}
}

func (r *ImagingResizer) Resize(fs afero.Fs, relPath string) error {
	format, err := imaging.FormatFromFilename(relPath)
	if err != nil {
		return fmt.Errorf("unsupported image format: %w", err)
	}

	src, err := fs.Open(relPath)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	src.Close()
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	ext := path.Ext(relPath)
	base := strings.TrimSuffix(relPath, ext)

	for _, size := range r.Sizes {
		if !size.Crop && bounds.Dx() <= size.Width && bounds.Dy() <= size.Height {
			continue
		}

		var resized *image.NRGBA
		if size.Crop {
			resized = imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)
		} else {
			resized = imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)
		}

		target := fmt.Sprintf("%s-%dx%d%s", base, size.Width, size.Height, ext)
		dst, err := fs.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}
		err = imaging.Encode(dst, resized, format)
		closeErr := dst.Close()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", target, err)
		}
		if closeErr != nil {
			return fmt.Errorf("failed to write %s: %w", target, closeErr)
		}
	}

	return nil
}
