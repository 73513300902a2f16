package ingest

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	thumbMaxWidth = 400
	thumbQuality  = 80
)

// GenerateThumbnail writes a width-bounded jpeg preview of the image at
// srcPath. Aspect ratio is preserved and small images are never upscaled.
// Formats the registered decoders cannot handle (heic among them) return an
// error; callers treat that as a non-fatal outcome.
func GenerateThumbnail(srcPath, dstPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > thumbMaxWidth {
		h := b.Dy() * thumbMaxWidth / b.Dx()
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: thumbQuality}); err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return out.Close()
}
