package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

const iconSize = 32

var (
	iconOnce sync.Once
	iconData []byte
)

// GetIcon returns the tray icon: ICO on Windows, PNG elsewhere.
func GetIcon() []byte {
	iconOnce.Do(func() {
		img := drawIcon(iconSize)
		if runtime.GOOS == "windows" {
			iconData = encodeICO(img)
		} else {
			iconData = encodePNG(img)
		}
	})
	return iconData
}

// drawIcon paints a rounded pad body with two stick dots.
func drawIcon(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	body := color.NRGBA{R: 0x2d, G: 0x8c, B: 0x4e, A: 0xff}
	stick := color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}

	s := float64(size)
	inEllipse := func(x, y, cx, cy, rx, ry float64) bool {
		dx, dy := (x-cx)/rx, (y-cy)/ry
		return dx*dx+dy*dy <= 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			switch {
			case inEllipse(fx, fy, s*0.34, s*0.5, s*0.11, s*0.11),
				inEllipse(fx, fy, s*0.66, s*0.5, s*0.11, s*0.11):
				img.SetNRGBA(x, y, stick)
			case inEllipse(fx, fy, s*0.5, s*0.5, s*0.48, s*0.3),
				inEllipse(fx, fy, s*0.22, s*0.62, s*0.16, s*0.26),
				inEllipse(fx, fy, s*0.78, s*0.62, s*0.16, s*0.26):
				img.SetNRGBA(x, y, body)
			}
		}
	}
	return img
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// encodeICO wraps a PNG in a single-image ICO container.
func encodeICO(img image.Image) []byte {
	data := encodePNG(img)
	size := img.Bounds().Dx()

	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{
		Width:    uint8(size % 256),
		Height:   uint8(size % 256),
		Planes:   1,
		BitCount: 32,
		Size:     uint32(len(data)),
		Offset:   6 + 16,
	})
	buf.Write(data)
	return buf.Bytes()
}
