package iconcache

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

var (
	brandPurple = color.RGBA{R: 0x64, G: 0x41, B: 0xa5, A: 0xff}
	glyphWhite  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// EnsureDefaultIcon writes a generated fallback icon to path when no file
// exists there. It reports whether a file was created.
func EnsureDefaultIcon(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("check default icon: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("ensure default icon directory: %w", err)
	}
	if err := writeICO(path, defaultImage()); err != nil {
		return false, err
	}
	return true, nil
}

// defaultImage draws a purple tile with a white speech-bubble body and two
// purple bars.
func defaultImage() image.Image {
	const side = 64
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(brandPurple), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(14, 12, 50, 44), image.NewUniform(glyphWhite), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(18, 44, 26, 52), image.NewUniform(glyphWhite), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(26, 20, 30, 34), image.NewUniform(brandPurple), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(36, 20, 40, 34), image.NewUniform(brandPurple), image.Point{}, draw.Src)
	return img
}
