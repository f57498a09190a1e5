package parse

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// XRefEntry locates one in-use object
type XRefEntry struct {
	Offset    int64 // byte offset for direct objects
	Gen       int
	InStream  bool // object lives in an object stream
	StreamNum int
	Index     int
}

// xrefSection is a single cross-reference section with its trailer
type xrefSection struct {
	StartXRef int64
	Entries   map[int]XRefEntry
	Free      map[int]bool
	Prev      int64
	Trailer   string // trailer dictionary, or the xref stream dictionary
	IsStream  bool
}

// incrementalParser follows the /Prev chain of an updated file and merges
// every revision's cross-reference section, newer entries overriding older ones.
type incrementalParser struct {
	data     []byte
	sections []*xrefSection // oldest first
	merged   map[int]XRefEntry
	log      *slog.Logger
}

func newIncrementalParser(data []byte, log *slog.Logger) *incrementalParser {
	return &incrementalParser{
		data:   data,
		merged: make(map[int]XRefEntry),
		log:    log,
	}
}

func (p *incrementalParser) parse() error {
	start, err := findLastStartXRef(p.data)
	if err != nil {
		return err
	}

	if err := p.parseChain(start); err != nil {
		return err
	}

	for _, s := range p.sections {
		for num := range s.Free {
			delete(p.merged, num)
		}
		for num, e := range s.Entries {
			p.merged[num] = e
		}
	}

	p.log.Debug("merged xref sections", "sections", len(p.sections), "objects", len(p.merged))
	return nil
}

// latest returns the newest section
func (p *incrementalParser) latest() *xrefSection {
	return p.sections[len(p.sections)-1]
}

// trailerValue looks key up in the newest trailer that defines it
func (p *incrementalParser) trailerValue(key string) string {
	for i := len(p.sections) - 1; i >= 0; i-- {
		if v := DictValue(p.sections[i].Trailer, key); v != "" {
			return v
		}
	}
	return ""
}

var startXRefPattern = regexp.MustCompile(`^startxref\s+(\d+)`)

// findLastStartXRef reads the offset recorded by the final startxref keyword
func findLastStartXRef(data []byte) (int64, error) {
	idx := bytes.LastIndex(data, []byte("startxref"))
	if idx == -1 {
		return 0, fmt.Errorf("startxref not found")
	}

	m := startXRefPattern.FindSubmatch(data[idx:min(len(data), idx+64)])
	if m == nil {
		return 0, fmt.Errorf("malformed startxref")
	}
	offset, err := strconv.ParseInt(string(m[1]), 10, 64)
	if err != nil || offset <= 0 || offset >= int64(len(data)) {
		return 0, fmt.Errorf("startxref offset %s out of range", m[1])
	}
	return offset, nil
}

func (p *incrementalParser) parseChain(start int64) error {
	visited := make(map[int64]bool)
	var chain []*xrefSection

	for offset := start; offset > 0 && !visited[offset]; {
		visited[offset] = true

		section, err := p.parseSection(offset)
		if err != nil {
			if len(chain) == 0 {
				return fmt.Errorf("xref at %d: %w", offset, err)
			}
			p.log.Debug("ignoring unreadable previous xref section", "offset", offset, "error", err)
			break
		}
		chain = append(chain, section)

		if section.Prev <= 0 || section.Prev >= int64(len(p.data)) {
			break
		}
		offset = section.Prev
	}

	for i := len(chain) - 1; i >= 0; i-- {
		p.sections = append(p.sections, chain[i])
	}
	return nil
}

func (p *incrementalParser) parseSection(offset int64) (*xrefSection, error) {
	rest := p.data[offset:]
	trimmed := bytes.TrimLeft(rest, " \t\r\n")
	offset += int64(len(rest) - len(trimmed))

	if bytes.HasPrefix(trimmed, []byte("xref")) {
		return p.parseTable(offset)
	}
	if len(trimmed) > 0 && isDigit(trimmed[0]) {
		return p.parseStreamSection(offset)
	}
	return nil, fmt.Errorf("unrecognized xref format")
}

// parseTable parses a classic "xref" table and the trailer after it
func (p *incrementalParser) parseTable(offset int64) (*xrefSection, error) {
	section := &xrefSection{
		StartXRef: offset,
		Entries:   make(map[int]XRefEntry),
		Free:      make(map[int]bool),
	}

	rest := p.data[offset:]
	trailerIdx := bytes.Index(rest, []byte("trailer"))
	if trailerIdx == -1 {
		return nil, fmt.Errorf("no trailer found")
	}

	tokens := strings.Fields(string(rest[len("xref"):trailerIdx]))
	for i := 0; i+1 < len(tokens); {
		first, err1 := strconv.Atoi(tokens[i])
		count, err2 := strconv.Atoi(tokens[i+1])
		if err1 != nil || err2 != nil || count < 0 {
			return nil, fmt.Errorf("bad subsection header %q %q", tokens[i], tokens[i+1])
		}
		i += 2

		for n := 0; n < count; n++ {
			if i+2 >= len(tokens) {
				return nil, fmt.Errorf("truncated subsection starting at %d", first)
			}
			off, _ := strconv.ParseInt(tokens[i], 10, 64)
			gen, _ := strconv.Atoi(tokens[i+1])
			switch tokens[i+2] {
			case "n":
				if off > 0 {
					section.Entries[first+n] = XRefEntry{Offset: off, Gen: gen}
				}
			case "f":
				section.Free[first+n] = true
			default:
				return nil, fmt.Errorf("bad entry type %q", tokens[i+2])
			}
			i += 3
		}
	}

	start := offset + int64(trailerIdx) + int64(len("trailer"))
	window := string(p.data[start:min(int64(len(p.data)), start+1<<16)])
	dictStart := skipSpace(window, 0)
	dictEnd, err := scanValue(window, dictStart)
	if err != nil {
		return nil, fmt.Errorf("trailer dictionary: %w", err)
	}
	section.Trailer = window[dictStart:dictEnd]

	if v := DictValue(section.Trailer, "/Prev"); v != "" {
		section.Prev, _ = strconv.ParseInt(v, 10, 64)
	}

	// hybrid files carry extra entries in an xref stream
	if v := DictValue(section.Trailer, "/XRefStm"); v != "" {
		if stmOffset, err := strconv.ParseInt(v, 10, 64); err == nil && stmOffset > 0 && stmOffset < int64(len(p.data)) {
			if extra, err := p.parseStreamSection(stmOffset); err == nil {
				for num, e := range extra.Entries {
					if _, ok := section.Entries[num]; !ok {
						section.Entries[num] = e
						delete(section.Free, num)
					}
				}
			} else {
				p.log.Debug("ignoring unreadable /XRefStm", "offset", stmOffset, "error", err)
			}
		}
	}

	p.log.Debug("parsed xref table", "offset", offset, "objects", len(section.Entries), "prev", section.Prev)
	return section, nil
}

// parseStreamSection parses a cross-reference stream (PDF 1.5+)
func (p *incrementalParser) parseStreamSection(offset int64) (*xrefSection, error) {
	obj, err := readObjectAt(p.data, offset, 0, nil)
	if err != nil {
		return nil, err
	}
	if !obj.IsStream() || DictValue(obj.Body, "/Type") != "/XRef" {
		return nil, fmt.Errorf("object %d is not an xref stream", obj.Ref.Num)
	}

	entries, free, err := parseXRefStream(obj.Body, obj.Stream)
	if err != nil {
		return nil, err
	}

	section := &xrefSection{
		StartXRef: offset,
		Entries:   entries,
		Free:      free,
		Trailer:   obj.Body,
		IsStream:  true,
	}
	if v := DictValue(obj.Body, "/Prev"); v != "" {
		section.Prev, _ = strconv.ParseInt(v, 10, 64)
	}

	p.log.Debug("parsed xref stream", "offset", offset, "objects", len(entries), "prev", section.Prev)
	return section, nil
}

// parseXRefStream decodes the binary entries of an xref stream
func parseXRefStream(dict string, raw []byte) (map[int]XRefEntry, map[int]bool, error) {
	w, err := ParseNumbers(DictValue(dict, "/W"))
	if err != nil || len(w) != 3 {
		return nil, nil, fmt.Errorf("invalid /W in xref stream")
	}
	w1, w2, w3 := int(w[0]), int(w[1]), int(w[2])
	entrySize := w1 + w2 + w3
	if entrySize <= 0 {
		return nil, nil, fmt.Errorf("invalid entry size")
	}

	size, err := ParseInt(DictValue(dict, "/Size"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid /Size in xref stream")
	}

	index := []float64{0, float64(size)}
	if v := DictValue(dict, "/Index"); v != "" {
		if index, err = ParseNumbers(v); err != nil || len(index)%2 != 0 {
			return nil, nil, fmt.Errorf("invalid /Index in xref stream")
		}
	}

	data, err := DecodeStream(dict, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode xref stream: %w", err)
	}

	entries := make(map[int]XRefEntry)
	free := make(map[int]bool)
	pos := 0
	for i := 0; i < len(index); i += 2 {
		first, count := int(index[i]), int(index[i+1])
		for n := 0; n < count; n++ {
			if pos+entrySize > len(data) {
				return entries, free, nil
			}
			entry := data[pos : pos+entrySize]
			pos += entrySize

			typ := int64(1)
			if w1 > 0 {
				typ = readBigEndian(entry[:w1])
			}
			f2 := readBigEndian(entry[w1 : w1+w2])
			f3 := readBigEndian(entry[w1+w2:])

			num := first + n
			switch typ {
			case 0:
				free[num] = true
			case 1:
				if f2 > 0 {
					entries[num] = XRefEntry{Offset: f2, Gen: int(f3)}
				}
			case 2:
				entries[num] = XRefEntry{InStream: true, StreamNum: int(f2), Index: int(f3)}
			}
		}
	}
	return entries, free, nil
}

func readBigEndian(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

var objHeaderPattern = regexp.MustCompile(`(?:^|[\s])(\d+)\s+(\d+)\s+obj\b`)

// rebuildXRef recovers an object map by scanning for object headers.
// It is used when the cross-reference data is missing or damaged.
func rebuildXRef(data []byte, log *slog.Logger) (map[int]XRefEntry, string, error) {
	entries := make(map[int]XRefEntry)
	for _, m := range objHeaderPattern.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(data[m[4]:m[5]]))
		if err1 != nil || err2 != nil || num <= 0 {
			continue
		}
		entries[num] = XRefEntry{Offset: int64(m[2]), Gen: gen}
	}
	if len(entries) == 0 {
		return nil, "", fmt.Errorf("no objects found")
	}

	var trailer string
	if idx := bytes.LastIndex(data, []byte("trailer")); idx != -1 {
		window := string(data[idx+len("trailer") : min(len(data), idx+len("trailer")+1<<16)])
		start := skipSpace(window, 0)
		if end, err := scanValue(window, start); err == nil && IsDict(window[start:end]) {
			trailer = window[start:end]
		}
	}

	// objects packed in object streams
	for num, e := range entries {
		if e.InStream {
			continue
		}
		obj, err := readObjectAt(data, e.Offset, num, nil)
		if err != nil || !obj.IsStream() {
			continue
		}
		switch DictValue(obj.Body, "/Type") {
		case "/ObjStm":
			os, err := newObjectStream(obj)
			if err != nil {
				continue
			}
			for i, member := range os.nums {
				if _, ok := entries[member]; !ok {
					entries[member] = XRefEntry{InStream: true, StreamNum: num, Index: i}
				}
			}
		case "/XRef":
			if trailer == "" {
				trailer = obj.Body
			}
		}
	}

	if DictValue(trailer, "/Root") == "" {
		root := 0
		for num, e := range entries {
			if e.InStream || num < root {
				continue
			}
			obj, err := readObjectAt(data, e.Offset, num, nil)
			if err == nil && DictValue(obj.Body, "/Type") == "/Catalog" {
				root = num
			}
		}
		if root > 0 {
			trailer = fmt.Sprintf("<</Root %d %d R/Size %d>>", root, entries[root].Gen, maxKey(entries)+1)
		}
	}

	log.Debug("rebuilt xref by scanning", "objects", len(entries))
	return entries, trailer, nil
}

func maxKey(m map[int]XRefEntry) int {
	n := 0
	for k := range m {
		n = max(n, k)
	}
	return n
}
