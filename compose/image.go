package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/benedoc-inc/pdfburn/core/write"
	"github.com/benedoc-inc/pdfburn/types"
)

// decodedImage is an image field payload ready to embed
type decodedImage struct {
	jpeg []byte      // embedded as-is when set
	img  image.Image // embedded as samples otherwise

	// pixel size of the payload as supplied, used for fitting
	width, height int
	downscaled    bool
}

func (d *decodedImage) embed(w write.ObjectWriter) (*write.ImageInfo, error) {
	if d.jpeg != nil {
		return write.EmbedJPEG(w, d.jpeg)
	}
	return write.EmbedImage(w, d.img), nil
}

// Images are decoded in full before downscaling, so payloads declaring
// more than decodeHeadroom times the pixel cap are refused up front.
// MaxDecodePixels bounds decoding when downscaling is disabled.
const (
	decodeHeadroom  = 4
	MaxDecodePixels = 1 << 28
)

type imageCodec struct {
	name   string
	config func(io.Reader) (image.Config, error)
	decode func(io.Reader) (image.Image, error)
}

var (
	codecJPEG = imageCodec{"jpeg", jpeg.DecodeConfig, jpeg.Decode}
	codecPNG  = imageCodec{"png", png.DecodeConfig, png.Decode}
	codecGIF  = imageCodec{"gif", gif.DecodeConfig, gif.Decode}
	codecWebP = imageCodec{"webp", webp.DecodeConfig, webp.Decode}
	codecBMP  = imageCodec{"bmp", bmp.DecodeConfig, bmp.Decode}
	codecTIFF = imageCodec{"tiff", tiff.DecodeConfig, tiff.Decode}
)

// codecFor picks the decoder for a declared subtype; unknown or missing
// types are decoded as PNG
func codecFor(subtype string) imageCodec {
	switch subtype {
	case "jpeg", "jpg", "pjpeg":
		return codecJPEG
	case "gif":
		return codecGIF
	case "webp":
		return codecWebP
	case "bmp", "x-ms-bmp":
		return codecBMP
	case "tiff":
		return codecTIFF
	}
	return codecPNG
}

// decodeLimit is the largest pixel count decoded at all
func decodeLimit(maxPixels int) int {
	if maxPixels <= 0 || maxPixels > MaxDecodePixels/decodeHeadroom {
		return MaxDecodePixels
	}
	return maxPixels * decodeHeadroom
}

// decodeImage decodes an image field value. The declared media type picks
// the decoder. The header is read first: images beyond the decode limit
// are refused, and JPEGs within the pixel limit are passed through without
// decoding the samples.
func decodeImage(value string, maxPixels int) (*decodedImage, error) {
	p, err := decodePayload(value)
	if err != nil {
		return nil, err
	}
	codec := codecFor(p.subtype())

	cfg, err := codec.config(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec.name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("image has no pixels")
	}
	if limit := decodeLimit(maxPixels); !withinLimit(cfg.Width, cfg.Height, limit) {
		return nil, fmt.Errorf("%s: %dx%d image exceeds the %d pixel decode limit", codec.name, cfg.Width, cfg.Height, limit)
	}
	if codec.name == codecJPEG.name && withinLimit(cfg.Width, cfg.Height, maxPixels) {
		return &decodedImage{jpeg: p.Data, width: cfg.Width, height: cfg.Height}, nil
	}

	img, err := codec.decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", codec.name, err)
	}

	bounds := img.Bounds()
	out := &decodedImage{img: img, width: bounds.Dx(), height: bounds.Dy()}
	if out.width == 0 || out.height == 0 {
		return nil, errors.New("image has no pixels")
	}
	if !withinLimit(out.width, out.height, maxPixels) {
		out.img = downscale(img, maxPixels)
		out.downscaled = true
	}
	return out, nil
}

func withinLimit(w, h, maxPixels int) bool {
	return maxPixels <= 0 || w*h <= maxPixels
}

// downscale resizes img to at most maxPixels, keeping the aspect ratio
func downscale(img image.Image, maxPixels int) image.Image {
	bounds := img.Bounds()
	scale := math.Sqrt(float64(maxPixels) / float64(bounds.Dx()*bounds.Dy()))
	w := max(1, int(float64(bounds.Dx())*scale))
	h := max(1, int(float64(bounds.Dy())*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// decodeImages decodes every filled image and signature field in parallel.
// The result is indexed like fields. When several payloads are broken the
// error names the first one in request order.
func (c *Compositor) decodeImages(ctx context.Context, fields []types.Field) ([]*decodedImage, error) {
	images := make([]*decodedImage, len(fields))
	errs := make([]error, len(fields))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i := range fields {
		f := &fields[i]
		if !isImageField(f) || f.Value == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			images[i], errs[i] = decodeImage(f.Value, c.opts.MaxImagePixels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, err := range errs {
		if err != nil {
			return nil, types.WrapError(types.ErrCodeImageDecode, "cannot decode image", err).ForField(&fields[i])
		}
	}
	return images, nil
}

func isImageField(f *types.Field) bool {
	return f.Type == types.FieldImage || f.Type == types.FieldSignature
}
