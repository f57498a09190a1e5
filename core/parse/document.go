// Package parse reads existing PDF files: cross-reference tables and streams
// across incremental revisions, objects in object streams, and the page tree.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// ErrEncrypted is returned for documents protected by a security handler
var ErrEncrypted = errors.New("encrypted documents are not supported")

// Options configures parsing
type Options struct {
	Logger *slog.Logger
}

// Trailer summarizes the newest trailer of the document
type Trailer struct {
	Size       int
	Root       Ref
	Info       Ref    // zero when absent
	ID         string // raw /ID array, empty when absent
	StartXRef  int64  // offset of the newest xref section
	XRefStream bool   // newest section is a cross-reference stream
	Revisions  int
	Recovered  bool // xref was rebuilt by scanning
}

// Document is a parsed PDF. It keeps the original bytes untouched.
type Document struct {
	raw     []byte
	version string
	xref    map[int]XRefEntry
	trailer Trailer

	objects    map[int]*Object
	objStreams map[int]*objectStream
	// loading holds objects being read; a /Length that leads back to
	// one of them is treated as unresolvable
	loading map[int]bool
	log     *slog.Logger
}

// Open parses PDF bytes
func Open(data []byte, opts *Options) (*Document, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	version, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	d := &Document{
		raw:        data,
		version:    version,
		objects:    make(map[int]*Object),
		objStreams: make(map[int]*objectStream),
		loading:    make(map[int]bool),
		log:        log,
	}

	var trailerDict string

	p := newIncrementalParser(data, log)
	if err := p.parse(); err == nil {
		d.xref = p.merged
		trailerDict = p.latest().Trailer
		d.trailer.StartXRef = p.latest().StartXRef
		d.trailer.XRefStream = p.latest().IsStream
		d.trailer.Revisions = len(p.sections)

		for _, key := range []string{"/Root", "/Info", "/ID", "/Encrypt"} {
			if DictValue(trailerDict, key) == "" {
				if v := p.trailerValue(key); v != "" {
					trailerDict, _ = SetDictValue(trailerDict, key, v)
				}
			}
		}
	} else {
		log.Debug("xref unreadable, scanning for objects", "error", err)

		entries, dict, rerr := rebuildXRef(data, log)
		if rerr != nil {
			return nil, fmt.Errorf("failed to read cross-reference data: %w", err)
		}
		d.xref = entries
		trailerDict = dict
		d.trailer.Recovered = true
		d.trailer.Revisions = 1
		if start, err := findLastStartXRef(data); err == nil {
			d.trailer.StartXRef = start
		}
	}

	if DictValue(trailerDict, "/Encrypt") != "" {
		return nil, ErrEncrypted
	}

	root, ok := ParseRef(DictValue(trailerDict, "/Root"))
	if !ok {
		return nil, fmt.Errorf("trailer has no /Root")
	}
	d.trailer.Root = root
	d.trailer.Info, _ = ParseRef(DictValue(trailerDict, "/Info"))
	d.trailer.ID = DictValue(trailerDict, "/ID")
	d.trailer.Size, _ = ParseInt(DictValue(trailerDict, "/Size"))
	for num := range d.xref {
		d.trailer.Size = max(d.trailer.Size, num+1)
	}

	catalog, err := d.Object(root.Num)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if !IsDict(catalog.Body) {
		return nil, fmt.Errorf("catalog %s is not a dictionary", root)
	}

	return d, nil
}

var headerPrefix = []byte("%PDF-")

func parseHeader(data []byte) (string, error) {
	idx := bytes.Index(data[:min(len(data), 1024)], headerPrefix)
	if idx == -1 {
		return "", fmt.Errorf("not a PDF file: missing %%PDF- header")
	}
	rest := data[idx+len(headerPrefix):]
	end := 0
	for end < len(rest) && end < 8 && (isDigit(rest[end]) || rest[end] == '.') {
		end++
	}
	if end == 0 {
		return "", fmt.Errorf("not a PDF file: missing version")
	}
	return string(rest[:end]), nil
}

// Raw returns the original document bytes
func (d *Document) Raw() []byte {
	return d.raw
}

// Version returns the header version, e.g. "1.7"
func (d *Document) Version() string {
	return d.version
}

// Trailer returns the merged trailer information
func (d *Document) Trailer() Trailer {
	return d.trailer
}

// HasObject reports whether num is in use
func (d *Document) HasObject(num int) bool {
	_, ok := d.xref[num]
	return ok
}

// ObjectNumbers returns every in-use object number in ascending order
func (d *Document) ObjectNumbers() []int {
	nums := make([]int, 0, len(d.xref))
	for num := range d.xref {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}

// Entry returns the cross-reference entry for object num
func (d *Document) Entry(num int) (XRefEntry, bool) {
	e, ok := d.xref[num]
	return e, ok
}

// Object returns object num, reading it from an object stream if necessary
func (d *Document) Object(num int) (*Object, error) {
	if obj, ok := d.objects[num]; ok {
		return obj, nil
	}

	e, ok := d.xref[num]
	if !ok {
		return nil, fmt.Errorf("object %d not found", num)
	}

	if d.loading[num] {
		return nil, fmt.Errorf("object %d refers to itself while loading", num)
	}
	d.loading[num] = true
	defer delete(d.loading, num)

	var obj *Object
	var err error
	if e.InStream {
		obj, err = d.objectFromStream(num, e)
	} else {
		obj, err = readObjectAt(d.raw, e.Offset, num, d.resolveLength)
	}
	if err != nil {
		return nil, err
	}

	d.objects[num] = obj
	return obj, nil
}

func (d *Document) resolveLength(ref Ref) (string, error) {
	obj, err := d.Object(ref.Num)
	if err != nil {
		return "", err
	}
	return obj.Body, nil
}

func (d *Document) objectFromStream(num int, e XRefEntry) (*Object, error) {
	os, ok := d.objStreams[e.StreamNum]
	if !ok {
		se, ok := d.xref[e.StreamNum]
		if !ok || se.InStream {
			return nil, fmt.Errorf("object stream %d not found", e.StreamNum)
		}
		if d.loading[e.StreamNum] {
			return nil, fmt.Errorf("object stream %d refers to itself while loading", e.StreamNum)
		}
		d.loading[e.StreamNum] = true
		container, err := readObjectAt(d.raw, se.Offset, e.StreamNum, d.resolveLength)
		delete(d.loading, e.StreamNum)
		if err != nil {
			return nil, err
		}
		if !container.IsStream() {
			return nil, fmt.Errorf("object %d is not an object stream", e.StreamNum)
		}
		if os, err = newObjectStream(container); err != nil {
			return nil, err
		}
		d.objStreams[e.StreamNum] = os
	}

	d.log.Debug("reading object from object stream", "object", num, "stream", e.StreamNum, "index", e.Index)
	return os.object(num, e.Index)
}

// Resolve follows value if it is an indirect reference and returns the
// referenced object's body. Direct values are returned unchanged.
func (d *Document) Resolve(value string) (string, error) {
	seen := 0
	for {
		ref, ok := ParseRef(value)
		if !ok {
			return value, nil
		}
		if seen++; seen > 32 {
			return "", fmt.Errorf("reference chain too deep at %s", ref)
		}
		obj, err := d.Object(ref.Num)
		if err != nil {
			return "", err
		}
		value = obj.Body
	}
}

// StreamData returns the decoded data of a stream object
func (d *Document) StreamData(obj *Object) ([]byte, error) {
	if !obj.IsStream() {
		return nil, fmt.Errorf("object %d is not a stream", obj.Ref.Num)
	}
	return DecodeStream(obj.Body, obj.Stream)
}

// ObjectBytes reconstructs "N G obj ... endobj" for object num
func (d *Document) ObjectBytes(num int) ([]byte, error) {
	obj, err := d.Object(num)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(obj.Ref.Num) + " " + strconv.Itoa(obj.Ref.Gen) + " obj\n")
	buf.WriteString(obj.Body)
	if obj.IsStream() {
		buf.WriteString("\nstream\n")
		buf.Write(obj.Stream)
		buf.WriteString("\nendstream")
	}
	buf.WriteString("\nendobj")
	return buf.Bytes(), nil
}
