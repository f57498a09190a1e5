package parse

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Object is an indirect object as stored in the file
type Object struct {
	Ref Ref
	// Body is the object's value text: a dictionary, array, number, etc.
	// For streams it is the stream dictionary.
	Body string
	// Stream holds the still-encoded stream bytes, nil for non-stream objects
	Stream []byte
}

// IsStream reports whether the object carries stream data
func (o *Object) IsStream() bool {
	return o.Stream != nil
}

// lengthResolver resolves an indirect /Length value
type lengthResolver func(ref Ref) (string, error)

var objHeaderAt = regexp.MustCompile(`^(\d+)\s+(\d+)\s+obj\b`)

// readObjectAt reads the object whose "N G obj" header starts at offset.
// When num is non-zero the header must match it; a header a few bytes off
// is tolerated, as some writers record slightly wrong offsets.
func readObjectAt(data []byte, offset int64, num int, resolve lengthResolver) (*Object, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}

	start := int(offset)
	for start < len(data) && isWhitespace(data[start]) {
		start++
	}

	m := objHeaderAt.FindSubmatchIndex(data[start:min(len(data), start+64)])
	if m == nil || (num != 0 && string(data[start+m[2]:start+m[3]]) != strconv.Itoa(num)) {
		if num == 0 {
			return nil, fmt.Errorf("no object header at offset %d", offset)
		}
		found, ok := findHeaderNear(data, start, num)
		if !ok {
			return nil, fmt.Errorf("object %d header not found near offset %d", num, offset)
		}
		start = found
		m = objHeaderAt.FindSubmatchIndex(data[start:min(len(data), start+64)])
	}

	objNum, _ := strconv.Atoi(string(data[start+m[2] : start+m[3]]))
	gen, _ := strconv.Atoi(string(data[start+m[4] : start+m[5]]))
	bodyStart := start + m[1]

	rest := data[bodyStart:]
	limit := bytes.Index(rest, []byte("endobj"))
	if limit == -1 {
		limit = len(rest)
	}
	text := string(rest[:limit])

	valueStart := skipSpace(text, 0)
	valueEnd, err := scanValue(text, valueStart)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", objNum, err)
	}

	obj := &Object{
		Ref:  Ref{Num: objNum, Gen: gen},
		Body: text[valueStart:valueEnd],
	}

	after := skipSpace(text, valueEnd)
	if !strings.HasPrefix(text[after:], "stream") || !IsDict(obj.Body) {
		return obj, nil
	}

	dataStart := after + len("stream")
	if dataStart < len(rest) && rest[dataStart] == '\r' {
		dataStart++
	}
	if dataStart < len(rest) && rest[dataStart] == '\n' {
		dataStart++
	}

	length := -1
	if v := DictValue(obj.Body, "/Length"); v != "" {
		if ref, ok := ParseRef(v); ok {
			if resolve != nil {
				if resolved, err := resolve(ref); err == nil {
					length, _ = ParseInt(resolved)
				}
			}
		} else if n, err := ParseInt(v); err == nil {
			length = n
		}
	}

	if length >= 0 && dataStart+length <= len(rest) && looksLikeStreamEnd(rest[dataStart+length:]) {
		obj.Stream = rest[dataStart : dataStart+length]
		return obj, nil
	}

	end := bytes.Index(rest[dataStart:], []byte("endstream"))
	if end == -1 {
		return nil, fmt.Errorf("object %d: endstream not found", objNum)
	}
	streamData := rest[dataStart : dataStart+end]
	streamData = bytes.TrimSuffix(streamData, []byte("\n"))
	streamData = bytes.TrimSuffix(streamData, []byte("\r"))
	obj.Stream = streamData
	return obj, nil
}

func looksLikeStreamEnd(b []byte) bool {
	b = bytes.TrimLeft(b, " \t\r\n")
	return bytes.HasPrefix(b, []byte("endstream"))
}

// findHeaderNear searches a small window around start for "num G obj"
func findHeaderNear(data []byte, start, num int) (int, bool) {
	lo := max(0, start-256)
	hi := min(len(data), start+256)
	pattern := regexp.MustCompile(fmt.Sprintf(`(?:^|[^0-9])(%d\s+\d+\s+obj\b)`, num))
	m := pattern.FindSubmatchIndex(data[lo:hi])
	if m == nil {
		return 0, false
	}
	return lo + m[2], true
}

// objectStream is a decoded /Type /ObjStm stream
type objectStream struct {
	nums    []int
	offsets []int
	first   int
	data    []byte
}

func newObjectStream(obj *Object) (*objectStream, error) {
	n, err := ParseInt(DictValue(obj.Body, "/N"))
	if err != nil {
		return nil, fmt.Errorf("/N not found in object stream %d", obj.Ref.Num)
	}
	first, err := ParseInt(DictValue(obj.Body, "/First"))
	if err != nil {
		return nil, fmt.Errorf("/First not found in object stream %d", obj.Ref.Num)
	}

	data, err := DecodeStream(obj.Body, obj.Stream)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", obj.Ref.Num, err)
	}
	if first > len(data) {
		return nil, fmt.Errorf("object stream %d: /First beyond data", obj.Ref.Num)
	}

	fields := strings.Fields(string(data[:first]))
	if len(fields) < 2*n {
		return nil, fmt.Errorf("object stream %d: header has %d entries, want %d", obj.Ref.Num, len(fields)/2, n)
	}

	os := &objectStream{first: first, data: data}
	for i := 0; i < n; i++ {
		num, err1 := strconv.Atoi(fields[2*i])
		off, err2 := strconv.Atoi(fields[2*i+1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("object stream %d: bad header", obj.Ref.Num)
		}
		os.nums = append(os.nums, num)
		os.offsets = append(os.offsets, off)
	}
	return os, nil
}

// object extracts member num, expected at index
func (os *objectStream) object(num, index int) (*Object, error) {
	if index < 0 || index >= len(os.nums) || os.nums[index] != num {
		index = -1
		for i, n := range os.nums {
			if n == num {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("object %d not in object stream", num)
		}
	}

	start := os.first + os.offsets[index]
	end := len(os.data)
	if index+1 < len(os.offsets) {
		end = os.first + os.offsets[index+1]
	}
	if start > len(os.data) || end > len(os.data) || start > end {
		return nil, fmt.Errorf("object %d: offset out of range", num)
	}

	text := string(os.data[start:end])
	valueStart := skipSpace(text, 0)
	valueEnd, err := scanValue(text, valueStart)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	return &Object{Ref: Ref{Num: num}, Body: text[valueStart:valueEnd]}, nil
}
