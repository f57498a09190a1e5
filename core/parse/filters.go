package parse

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"
	"strings"
)

// DecodeStream applies every filter named in the stream dictionary to data
func DecodeStream(dict string, data []byte) ([]byte, error) {
	filters := streamFilters(DictValue(dict, "/Filter"))
	params := streamParams(DictValue(dict, "/DecodeParms"), len(filters))

	out := data
	for i, name := range filters {
		var err error
		out, err = DecodeFilter(out, name)
		if err != nil {
			return nil, err
		}
		if params[i] != "" {
			out, err = applyPredictor(out, params[i])
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func streamFilters(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if strings.HasPrefix(v, "/") {
		return []string{v}
	}
	items, err := ArrayItems(v)
	if err != nil {
		return nil
	}
	return items
}

func streamParams(v string, n int) []string {
	params := make([]string, n)
	v = strings.TrimSpace(v)
	if v == "" || n == 0 {
		return params
	}
	if IsDict(v) {
		params[0] = v
		return params
	}
	items, _ := ArrayItems(v)
	for i := 0; i < n && i < len(items); i++ {
		if IsDict(items[i]) {
			params[i] = items[i]
		}
	}
	return params
}

// DecodeFilter decodes data with a single named filter
func DecodeFilter(data []byte, filterName string) ([]byte, error) {
	switch strings.TrimPrefix(filterName, "/") {
	case "FlateDecode", "Fl":
		return DecodeFlate(data)
	case "ASCIIHexDecode", "AHx":
		return DecodeASCIIHex(data)
	case "ASCII85Decode", "A85":
		return DecodeASCII85(data)
	case "RunLengthDecode", "RL":
		return DecodeRunLength(data)
	default:
		return nil, fmt.Errorf("unsupported filter: %s", filterName)
	}
}

// DecodeFlate decompresses zlib data, falling back to raw deflate
func DecodeFlate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err == nil {
		out, err := io.ReadAll(zr)
		zr.Close()
		if err == nil || (err == io.ErrUnexpectedEOF && len(out) > 0) {
			return out, nil
		}
	}

	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil && !(err == io.ErrUnexpectedEOF && len(out) > 0) {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return out, nil
}

// DecodeASCIIHex decodes hex digit pairs, ignoring whitespace, up to '>'
func DecodeASCIIHex(data []byte) ([]byte, error) {
	var result bytes.Buffer
	var hi byte
	var half bool

	for _, b := range data {
		if isWhitespace(b) {
			continue
		}
		if b == '>' {
			break
		}

		var nibble byte
		switch {
		case b >= '0' && b <= '9':
			nibble = b - '0'
		case b >= 'A' && b <= 'F':
			nibble = b - 'A' + 10
		case b >= 'a' && b <= 'f':
			nibble = b - 'a' + 10
		default:
			return nil, fmt.Errorf("invalid hex character: %c", b)
		}

		if half {
			result.WriteByte(hi<<4 | nibble)
		} else {
			hi = nibble
		}
		half = !half
	}

	if half {
		result.WriteByte(hi << 4)
	}
	return result.Bytes(), nil
}

// DecodeASCII85 decodes base-85 data terminated by "~>"
func DecodeASCII85(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("<~"))
	if end := bytes.Index(data, []byte("~>")); end != -1 {
		data = data[:end]
	}

	out := make([]byte, 4*len(data)/5+8)
	n, _, err := ascii85.Decode(out, data, true)
	if err != nil {
		return nil, fmt.Errorf("ascii85: %w", err)
	}
	return out[:n], nil
}

// DecodeRunLength decodes RunLengthDecode data
func DecodeRunLength(data []byte) ([]byte, error) {
	var result bytes.Buffer
	for i := 0; i < len(data); {
		length := int(data[i])
		i++
		switch {
		case length == 128:
			return result.Bytes(), nil
		case length < 128:
			end := i + length + 1
			if end > len(data) {
				return nil, fmt.Errorf("run length literal overruns data")
			}
			result.Write(data[i:end])
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("run length repeat overruns data")
			}
			result.Write(bytes.Repeat(data[i:i+1], 257-length))
			i++
		}
	}
	return result.Bytes(), nil
}

// applyPredictor undoes PNG row predictors (Predictor >= 10) described by parms
func applyPredictor(data []byte, parms string) ([]byte, error) {
	predictor, _ := ParseInt(DictValue(parms, "/Predictor"))
	if predictor < 10 {
		return data, nil
	}

	columns := 1
	if v := DictValue(parms, "/Columns"); v != "" {
		columns, _ = ParseInt(v)
	}
	colors := 1
	if v := DictValue(parms, "/Colors"); v != "" {
		colors, _ = ParseInt(v)
	}
	bpc := 8
	if v := DictValue(parms, "/BitsPerComponent"); v != "" {
		bpc, _ = ParseInt(v)
	}

	bpp := (colors*bpc + 7) / 8
	rowLen := (columns*colors*bpc + 7) / 8
	if rowLen <= 0 || bpp <= 0 {
		return nil, fmt.Errorf("invalid predictor parameters")
	}

	stride := rowLen + 1
	rows := len(data) / stride
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)

	for r := 0; r < rows; r++ {
		row := data[r*stride : (r+1)*stride]
		filter := row[0]
		copy(cur, row[1:])

		for i := 0; i < rowLen; i++ {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]

			switch filter {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter %d", filter)
			}
		}

		out = append(out, cur...)
		prev, cur = cur, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
