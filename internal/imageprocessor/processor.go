package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// DefaultMaxPixels - предел площади исходника до декодирования (40 Мп)
const DefaultMaxPixels = 40_000_000

// Result - нормализованное изображение
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Processor приводит загруженные фото к JPEG ограниченного размера
type Processor struct {
	quality   int // JPEG quality (1-100)
	maxSide   int
	maxPixels int
}

func NewProcessor(quality, maxSide, maxPixels int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxSide <= 0 {
		maxSide = 1280
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Processor{quality: quality, maxSide: maxSide, maxPixels: maxPixels}
}

// Normalize декодирует jpeg/png/webp, уменьшает длинную сторону до maxSide
// (без увеличения) и кодирует в JPEG. Прозрачность заливается белым.
// Размеры проверяются по заголовку, до выделения памяти под пиксели.
func (p *Processor) Normalize(data []byte) (*Result, error) {
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if header.Width <= 0 || header.Height <= 0 ||
		int64(header.Width)*int64(header.Height) > int64(p.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, header.Width, header.Height, p.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	bounds := img.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), p.maxSide)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       w,
		Height:      h,
	}, nil
}

// FitWithin сохраняет пропорции, длинная сторона не больше maxSide
func FitWithin(width, height, maxSide int) (int, int) {
	if width <= maxSide && height <= maxSide {
		return width, height
	}
	if width >= height {
		nh := height * maxSide / width
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := width * maxSide / height
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}
