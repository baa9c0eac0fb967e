// Package imageproc shrinks raster images before they are uploaded.
package imageproc

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Options bounds the output size and sets the JPEG quality.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// DefaultOptions fits images inside 1920x1080 at JPEG quality 75.
var DefaultOptions = Options{MaxWidth: 1920, MaxHeight: 1080, Quality: 75}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultOptions.MaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultOptions.MaxHeight
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultOptions.Quality
	}
	return o
}

// Supported reports whether filename has a recognized raster extension (.jpg, .jpeg, .png).
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Compress re-encodes data when it is a supported image, downscaling it to fit
// the envelope. The result is used only when it is smaller than the input;
// otherwise, and on any decode or encode failure, data is returned unchanged.
// The boolean reports whether the compressed bytes were chosen.
func Compress(filename string, data []byte, opts Options) ([]byte, bool) {
	if !Supported(filename) || len(data) == 0 {
		return data, false
	}
	opts = opts.withDefaults()

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, false
	}
	b := img.Bounds()
	if b.Dx() > opts.MaxWidth || b.Dy() > opts.MaxHeight {
		img = imaging.Fit(img, opts.MaxWidth, opts.MaxHeight, imaging.Lanczos)
	}

	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return data, false
	}
	var out bytes.Buffer
	if err := imaging.Encode(&out, img, format,
		imaging.JPEGQuality(opts.Quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	); err != nil {
		return data, false
	}
	if out.Len() >= len(data) {
		return data, false
	}
	return out.Bytes(), true
}
