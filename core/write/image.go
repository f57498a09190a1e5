package write

import (
	"encoding/binary"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ImageInfo contains information about an embedded image
type ImageInfo struct {
	ObjectNum  int    // Object number of the image XObject
	Width      int    // Image width in pixels
	Height     int    // Image height in pixels
	ColorSpace string // PDF color space name (e.g., "/DeviceRGB")
	SMask      int    // Object number of the soft mask, 0 when opaque
}

// EmbedJPEG adds a JPEG image without re-encoding (DCTDecode)
func EmbedJPEG(w ObjectWriter, jpegData []byte) (*ImageInfo, error) {
	width, height, colorSpace, err := parseJPEGHeader(jpegData)
	if err != nil {
		return nil, fmt.Errorf("invalid JPEG: %w", err)
	}

	dict := Dictionary{
		"Type":             "/XObject",
		"Subtype":          "/Image",
		"Width":            width,
		"Height":           height,
		"ColorSpace":       colorSpace,
		"BitsPerComponent": 8,
		"Filter":           "/DCTDecode",
	}
	if colorSpace == "/DeviceCMYK" {
		// Adobe CMYK JPEGs are stored inverted
		dict["Decode"] = Raw("[1 0 1 0 1 0 1 0]")
	}

	return &ImageInfo{
		ObjectNum:  w.AddStreamObject(dict, jpegData, false),
		Width:      width,
		Height:     height,
		ColorSpace: colorSpace,
	}, nil
}

// EmbedImage adds a decoded image as Flate-compressed samples. Images with
// transparency get an 8-bit soft mask.
func EmbedImage(w ObjectWriter, img image.Image) *ImageInfo {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	info := &ImageInfo{Width: width, Height: height}

	var samples []byte
	if gray, ok := img.(*image.Gray); ok {
		info.ColorSpace = "/DeviceGray"
		samples = make([]byte, 0, width*height)
		for y := 0; y < height; y++ {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
			samples = append(samples, row...)
		}
	} else {
		info.ColorSpace = "/DeviceRGB"
		nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

		samples = make([]byte, 0, width*height*3)
		alpha := make([]byte, 0, width*height)
		opaque := true
		for i := 0; i < len(nrgba.Pix); i += 4 {
			samples = append(samples, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
			alpha = append(alpha, nrgba.Pix[i+3])
			if nrgba.Pix[i+3] != 0xFF {
				opaque = false
			}
		}

		if !opaque {
			info.SMask = w.AddStreamObject(Dictionary{
				"Type":             "/XObject",
				"Subtype":          "/Image",
				"Width":            width,
				"Height":           height,
				"ColorSpace":       "/DeviceGray",
				"BitsPerComponent": 8,
			}, alpha, true)
		}
	}

	dict := Dictionary{
		"Type":             "/XObject",
		"Subtype":          "/Image",
		"Width":            width,
		"Height":           height,
		"ColorSpace":       info.ColorSpace,
		"BitsPerComponent": 8,
	}
	if info.SMask != 0 {
		dict["SMask"] = fmt.Sprintf("%d 0 R", info.SMask)
	}
	info.ObjectNum = w.AddStreamObject(dict, samples, true)

	return info
}

// parseJPEGHeader parses a JPEG header to extract width, height, and color space
func parseJPEGHeader(data []byte) (width, height int, colorSpace string, err error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0, "", fmt.Errorf("not a valid JPEG (missing SOI)")
	}

	pos := 2
	for pos < len(data)-1 {
		if data[pos] != 0xFF {
			pos++
			continue
		}

		marker := data[pos+1]
		pos += 2

		// Skip padding
		if marker == 0xFF {
			pos--
			continue
		}

		// SOF0-SOF3: baseline, extended, progressive, lossless
		if marker >= 0xC0 && marker <= 0xC3 {
			if pos+8 > len(data) {
				return 0, 0, "", fmt.Errorf("truncated SOF segment")
			}

			// Skip length (2 bytes), precision (1 byte)
			height = int(binary.BigEndian.Uint16(data[pos+3 : pos+5]))
			width = int(binary.BigEndian.Uint16(data[pos+5 : pos+7]))

			switch data[pos+7] {
			case 1:
				colorSpace = "/DeviceGray"
			case 4:
				colorSpace = "/DeviceCMYK"
			default:
				colorSpace = "/DeviceRGB"
			}
			return width, height, colorSpace, nil
		}

		if pos+2 > len(data) {
			break
		}
		pos += int(binary.BigEndian.Uint16(data[pos : pos+2]))
	}

	return 0, 0, "", fmt.Errorf("no SOF marker found")
}
