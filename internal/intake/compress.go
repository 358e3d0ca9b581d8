package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/warranty/pkg/formatting"
)

// ErrCompress indicates a photo could not be brought within bounds.
var ErrCompress = errors.New("image compression failed")

const (
	startQuality = 90
	minQuality   = 40
	qualityStep  = 10
	shrinkFactor = 0.75
	minDimension = 64
)

// Photo is a file selected for a photo slot.
type Photo struct {
	Slot        string
	Filename    string
	ContentType string
	Data        []byte
}

// CompressOptions bounds a compressed photo.
type CompressOptions struct {
	MaxSizeMB        float64
	MaxWidthOrHeight int
}

// DefaultCompressOptions returns the bounds used by the claim form.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{MaxSizeMB: 1, MaxWidthOrHeight: 1920}
}

// Compress re-encodes p as JPEG within opts. A photo already inside both
// bounds is returned unchanged. The filename is preserved.
func Compress(ctx context.Context, p Photo, opts CompressOptions) (Photo, error) {
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}

	maxBytes := formatting.Megabytes(opts.MaxSizeMB)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %s: %v", ErrCompress, p.Filename, err)
	}
	if int64(len(p.Data)) <= maxBytes && fits(cfg.Width, cfg.Height, opts.MaxWidthOrHeight) {
		return p, nil
	}

	src, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %s: %v", ErrCompress, p.Filename, err)
	}

	w, h := bound(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxWidthOrHeight)
	for {
		if err := ctx.Err(); err != nil {
			return Photo{}, err
		}

		img := resample(src, w, h)
		for q := startQuality; q >= minQuality; q -= qualityStep {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
				return Photo{}, fmt.Errorf("%w: %s: %v", ErrCompress, p.Filename, err)
			}
			if int64(buf.Len()) <= maxBytes {
				return Photo{
					Slot:        p.Slot,
					Filename:    p.Filename,
					ContentType: "image/jpeg",
					Data:        buf.Bytes(),
				}, nil
			}
		}

		w, h = int(float64(w)*shrinkFactor), int(float64(h)*shrinkFactor)
		if w < minDimension || h < minDimension {
			return Photo{}, fmt.Errorf("%w: %s: cannot fit %s", ErrCompress, p.Filename, formatting.FormatBytes(maxBytes, 1))
		}
	}
}

// CompressAll compresses every photo concurrently. Either all photos are
// returned in input order or the first error is.
func CompressAll(ctx context.Context, photos []Photo, opts CompressOptions) ([]Photo, error) {
	out := make([]Photo, len(photos))
	g, ctx := errgroup.WithContext(ctx)

	for i, p := range photos {
		g.Go(func() error {
			c, err := Compress(ctx, p, opts)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func fits(w, h, limit int) bool {
	return limit <= 0 || (w <= limit && h <= limit)
}

// bound scales w and h down so the longer side is at most limit.
func bound(w, h, limit int) (int, int) {
	if fits(w, h, limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// resample draws src onto a white w x h canvas, flattening any transparency.
func resample(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
