package tray

import (
	"bytes"
	"encoding/binary"
)

const iconSize = 16

// icon draws a 16x16 32-bit ICO: a rounded controller body with two dark
// thumb sticks
func icon() []byte {
	const (
		pixelBytes = iconSize * iconSize * 4
		maskBytes  = iconSize * 4 // 1bpp AND mask, rows padded to 32 bits
		dibHeader  = 40
		imageSize  = dibHeader + pixelBytes + maskBytes
	)

	var buf bytes.Buffer
	le := binary.LittleEndian

	// ICONDIR
	binary.Write(&buf, le, []uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{iconSize, iconSize, 0, 0})
	binary.Write(&buf, le, []uint16{1, 32})
	binary.Write(&buf, le, []uint32{imageSize, 22})
	// BITMAPINFOHEADER, height doubled for the mask
	binary.Write(&buf, le, []uint32{dibHeader, iconSize, iconSize * 2})
	binary.Write(&buf, le, []uint16{1, 32})
	binary.Write(&buf, le, []uint32{0, pixelBytes, 0, 0, 0, 0})

	// Pixels, BGRA, bottom row first
	for y := iconSize - 1; y >= 0; y-- {
		for x := 0; x < iconSize; x++ {
			buf.Write(iconPixel(x, y))
		}
	}
	buf.Write(make([]byte, maskBytes))
	return buf.Bytes()
}

func iconPixel(x, y int) []byte {
	transparent := []byte{0, 0, 0, 0}
	body := []byte{0xE0, 0xE0, 0xE0, 0xFF}
	stick := []byte{0x40, 0x40, 0x40, 0xFF}

	if y < 4 || y > 12 {
		return transparent
	}
	// rounded corners
	if (y == 4 || y == 12) && (x < 2 || x > 13) {
		return transparent
	}
	if (y == 11 || y == 12) && x >= 6 && x <= 9 {
		return transparent
	}
	if (x >= 3 && x <= 5 || x >= 10 && x <= 12) && y >= 6 && y <= 8 {
		return stick
	}
	return body
}
