// Package photo prepares uploaded item photos for storage.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxSide is the maximum width or height of a stored photo.
const MaxSide = 1024

// Quality is the JPEG quality of stored photos.
const Quality = 85

// MaxUpload is the largest accepted upload in bytes.
const MaxUpload = 10 << 20

// ContentType is the MIME type of every stored photo.
const ContentType = "image/jpeg"

var (
	// ErrUnsupported is returned for data that is not a JPEG or PNG image.
	ErrUnsupported = errors.New("unsupported image format (only JPEG and PNG accepted)")
	// ErrTooLarge is returned for uploads over MaxUpload.
	ErrTooLarge = errors.New("photo is too large")
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
}

// Normalize validates data by sniffing its bytes, shrinks it to fit within
// MaxSide and re-encodes it as JPEG.
func Normalize(data []byte) ([]byte, error) {
	if len(data) > MaxUpload {
		return nil, ErrTooLarge
	}

	decode, ok := decoders[http.DetectContentType(data)]
	if !ok {
		return nil, ErrUnsupported
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxSide), &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down so neither side exceeds limit, keeping the aspect
// ratio. Smaller images are returned as is.
func fit(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= limit && h <= limit {
		return img
	}

	newW, newH := limit, limit
	if w > h {
		newH = max(h*limit/w, 1)
	} else {
		newW = max(w*limit/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
