package materialize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	// Upstream textures are PNG today; register JPEG too so a format
	// change upstream degrades to a working decode instead of a skip.
	_ "image/jpeg"
)

// Image decodes body exactly once and writes the canonical copy plus one
// square rendition per entry in sizes, each under dir/<size>x<size>/.
// If the source already matches the canonical edge length the original
// bytes are stored untouched, avoiding a lossy re-encode. A decode failure
// writes nothing.
func Image(body []byte, dir, name string, canonical int, sizes []int) error {
	decoded, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}

	src := toRGBA(decoded)
	bounds := src.Bounds()

	canonicalPath := filepath.Join(dir, name)
	if bounds.Dx() == canonical && bounds.Dy() == canonical {
		if err := os.WriteFile(canonicalPath, body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	} else {
		if err := writeResized(src, canonical, canonicalPath); err != nil {
			return err
		}
	}

	for _, size := range sizes {
		sizeDir := filepath.Join(dir, fmt.Sprintf("%dx%d", size, size))
		if err := writeResized(src, size, filepath.Join(sizeDir, name)); err != nil {
			return err
		}
	}

	return nil
}

// toRGBA normalizes a decoded image to 8-bit RGBA, preserving alpha.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Copy(rgba, img.Bounds().Min, img, img.Bounds(), draw.Src, nil)
	return rgba
}

// writeResized resamples src to a size×size square and writes it as PNG.
// CatmullRom is the highest-quality separable kernel x/image ships; the
// source is square by contract, so this is a direct stretch, not a crop.
func writeResized(src *image.RGBA, size int, path string) error {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
