package compose

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/benedoc-inc/pdfburn/core/parse"
	"github.com/benedoc-inc/pdfburn/core/write"
	"github.com/benedoc-inc/pdfburn/font"
)

// Resource name prefixes for objects added by a burn
const (
	fontPrefix  = "BurnF"
	imagePrefix = "BurnIm"
)

// pageOverlay collects the marks and resources added to one page
type pageOverlay struct {
	page    parse.Page
	content *write.ContentStream

	fonts     map[string]int    // resource name -> font object
	images    map[string]int    // resource name -> image object
	faceNames map[string]string // face name -> resource name

	// resource names already used by the page, per category
	taken map[string]map[string]bool
	seq   map[string]int
}

func newPageOverlay(doc *parse.Document, page parse.Page) *pageOverlay {
	o := &pageOverlay{
		page:      page,
		content:   write.NewContentStream(),
		fonts:     make(map[string]int),
		images:    make(map[string]int),
		faceNames: make(map[string]string),
		taken:     make(map[string]map[string]bool),
		seq:       make(map[string]int),
	}
	for _, category := range []string{"/Font", "/XObject"} {
		names := make(map[string]bool)
		if sub, err := doc.Resolve(parse.DictValue(page.Resources, category)); err == nil && parse.IsDict(sub) {
			for _, key := range parse.DictKeys(sub) {
				names[key] = true
			}
		}
		o.taken[category] = names
	}
	return o
}

// newName returns a resource name, with leading slash, unused on the page
func (o *pageOverlay) newName(category, prefix string) string {
	for {
		o.seq[category]++
		name := "/" + prefix + strconv.Itoa(o.seq[category])
		if !o.taken[category][name] {
			o.taken[category][name] = true
			return name
		}
	}
}

// fontResource returns the page's resource name for face, embedding the
// font on first use in the document
func (o *pageOverlay) fontResource(face font.Face, embed func(font.Face) int) string {
	if name, ok := o.faceNames[face.Name()]; ok {
		return name
	}
	name := o.newName("/Font", fontPrefix)
	o.fonts[name] = embed(face)
	o.faceNames[face.Name()] = name
	return name
}

func (o *pageOverlay) imageResource(objNum int) string {
	name := o.newName("/XObject", imagePrefix)
	o.images[name] = objNum
	return name
}

// apply rewrites the page dictionary: the original content is wrapped in
// q/Q so its graphics state can't leak into the overlay, the overlay is
// appended and the new resources are merged into an inline dictionary.
func (o *pageOverlay) apply(doc *parse.Document, w *write.IncrementalWriter) error {
	contents, err := contentRefs(doc, parse.DictValue(o.page.Dict, "/Contents"))
	if err != nil {
		return fmt.Errorf("page %s contents: %w", o.page.Ref, err)
	}

	data := o.content.Bytes()
	if len(contents) > 0 {
		save := w.AddStreamObject(write.Dictionary{}, []byte("q\n"), false)
		contents = append([]string{fmt.Sprintf("%d 0 R", save)}, contents...)
		data = append([]byte("Q\n"), data...)
	}
	overlay := w.AddStreamObject(write.Dictionary{}, data, true)
	contents = append(contents, fmt.Sprintf("%d 0 R", overlay))

	resources := o.page.Resources
	for _, merge := range []struct {
		category string
		entries  map[string]int
	}{
		{"/Font", o.fonts},
		{"/XObject", o.images},
	} {
		if len(merge.entries) == 0 {
			continue
		}
		if resources, err = mergeResources(doc, resources, merge.category, merge.entries); err != nil {
			return fmt.Errorf("page %s resources: %w", o.page.Ref, err)
		}
	}

	dict, err := parse.SetDictValue(o.page.Dict, "/Resources", resources)
	if err != nil {
		return err
	}
	if dict, err = parse.SetDictValue(dict, "/Contents", "["+strings.Join(contents, " ")+"]"); err != nil {
		return err
	}
	return w.ReplaceObject(o.page.Ref.Num, []byte(dict))
}

// contentRefs returns the page's content streams as references. A
// /Contents reference to an array object is flattened.
func contentRefs(doc *parse.Document, value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	if ref, ok := parse.ParseRef(value); ok {
		obj, err := doc.Object(ref.Num)
		if err != nil {
			return nil, err
		}
		if obj.IsStream() {
			return []string{ref.String()}, nil
		}
		value = obj.Body
	}

	var refs []string
	for _, ref := range parse.ParseRefArray(value) {
		refs = append(refs, ref.String())
	}
	return refs, nil
}

// mergeResources adds entries to the category subdictionary of resources
func mergeResources(doc *parse.Document, resources, category string, entries map[string]int) (string, error) {
	sub, err := doc.Resolve(parse.DictValue(resources, category))
	if err != nil {
		return "", err
	}
	if !parse.IsDict(sub) {
		sub = "<<>>"
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if sub, err = parse.SetDictValue(sub, name, fmt.Sprintf("%d 0 R", entries[name])); err != nil {
			return "", err
		}
	}
	return parse.SetDictValue(resources, category, sub)
}
