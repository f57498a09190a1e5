package parse

import (
	"fmt"
	"strconv"
)

// Rect is a PDF rectangle [llx lly urx ury]
type Rect struct {
	LLX, LLY, URX, URY float64
}

func (r Rect) Width() float64  { return r.URX - r.LLX }
func (r Rect) Height() float64 { return r.URY - r.LLY }

// LetterBox is used when a page tree declares no /MediaBox at all
var LetterBox = Rect{0, 0, 612, 792}

// Page is a leaf of the page tree with inherited attributes applied
type Page struct {
	Ref  Ref
	Dict string // page dictionary as stored
	// Resources is the effective resource dictionary (inherited and
	// dereferenced), "<<>>" when the page has none
	Resources string
	MediaBox  Rect
	Rotate    int
}

func (p Page) Width() float64  { return p.MediaBox.Width() }
func (p Page) Height() float64 { return p.MediaBox.Height() }

type inherited struct {
	resources string
	mediaBox  string
	rotate    string
}

// Pages walks the page tree from the catalog and returns every page in order
func (d *Document) Pages() ([]Page, error) {
	catalog, err := d.Object(d.trailer.Root.Num)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	pagesRef, ok := ParseRef(DictValue(catalog.Body, "/Pages"))
	if !ok {
		return nil, fmt.Errorf("no /Pages reference in catalog")
	}

	var pages []Page
	visited := make(map[int]bool)
	if err := d.walkPages(pagesRef, inherited{}, visited, &pages); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	return pages, nil
}

func (d *Document) walkPages(ref Ref, inh inherited, visited map[int]bool, pages *[]Page) error {
	if visited[ref.Num] {
		return fmt.Errorf("page tree cycle at %s", ref)
	}
	visited[ref.Num] = true

	node, err := d.Object(ref.Num)
	if err != nil {
		return fmt.Errorf("page tree node %s: %w", ref, err)
	}
	if !IsDict(node.Body) {
		return fmt.Errorf("page tree node %s is not a dictionary", ref)
	}

	if v := DictValue(node.Body, "/Resources"); v != "" {
		inh.resources = v
	}
	if v := DictValue(node.Body, "/MediaBox"); v != "" {
		inh.mediaBox = v
	}
	if v := DictValue(node.Body, "/Rotate"); v != "" {
		inh.rotate = v
	}

	kids := DictValue(node.Body, "/Kids")
	typ := DictValue(node.Body, "/Type")
	if typ == "/Page" || (typ == "" && kids == "") {
		page, err := d.buildPage(ref, node.Body, inh)
		if err != nil {
			return err
		}
		*pages = append(*pages, page)
		return nil
	}

	kidsArr, err := d.Resolve(kids)
	if err != nil {
		return fmt.Errorf("kids of %s: %w", ref, err)
	}
	for _, kid := range ParseRefArray(kidsArr) {
		if err := d.walkPages(kid, inh, visited, pages); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) buildPage(ref Ref, dict string, inh inherited) (Page, error) {
	page := Page{
		Ref:       ref,
		Dict:      dict,
		Resources: "<<>>",
		MediaBox:  LetterBox,
	}

	if inh.resources != "" {
		res, err := d.Resolve(inh.resources)
		if err != nil {
			return page, fmt.Errorf("resources of page %s: %w", ref, err)
		}
		if IsDict(res) {
			page.Resources = res
		}
	}

	if inh.mediaBox != "" {
		box, err := d.Resolve(inh.mediaBox)
		if err != nil {
			return page, fmt.Errorf("media box of page %s: %w", ref, err)
		}
		items, err := ArrayItems(box)
		if err != nil || len(items) != 4 {
			return page, fmt.Errorf("page %s has an invalid /MediaBox %q", ref, box)
		}
		var nums [4]float64
		for i, item := range items {
			v, err := d.Resolve(item)
			if err != nil {
				return page, err
			}
			if nums[i], err = strconv.ParseFloat(v, 64); err != nil {
				return page, fmt.Errorf("page %s has an invalid /MediaBox %q", ref, box)
			}
		}
		page.MediaBox = Rect{
			LLX: min(nums[0], nums[2]),
			LLY: min(nums[1], nums[3]),
			URX: max(nums[0], nums[2]),
			URY: max(nums[1], nums[3]),
		}
	}

	if inh.rotate != "" {
		if v, err := d.Resolve(inh.rotate); err == nil {
			page.Rotate, _ = ParseInt(v)
		}
	}

	return page, nil
}
