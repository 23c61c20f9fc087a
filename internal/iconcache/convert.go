package iconcache

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	ico "github.com/biessek/golang-ico"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"streamwatch/internal/fileutil"
)

// maxIconSide is the largest edge the ICO format can describe.
const maxIconSide = 256

func decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("decode icon image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("decode icon image: empty %s image", format)
	}
	return fit(img), nil
}

// fit scales img down so neither side exceeds maxIconSide.
func fit(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxIconSide && h <= maxIconSide {
		return img
	}
	if w >= h {
		h = max(1, h*maxIconSide/w)
		w = maxIconSide
	} else {
		w = max(1, w*maxIconSide/h)
		h = maxIconSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// writeICO encodes img next to dest and renames it into place, so readers
// never see a partial file.
func writeICO(dest string, img image.Image) error {
	err := fileutil.WriteAtomic(dest, 0o644, func(w io.Writer) error {
		return ico.Encode(w, img)
	})
	if err != nil {
		return fmt.Errorf("store icon: %w", err)
	}
	return nil
}
