package write

import (
	"fmt"
	"time"
)

// Metadata holds document information dictionary entries
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Creator      string
	Producer     string
	CreationDate time.Time // zero to omit
}

// SetMetadata creates an Info dictionary object with the provided metadata
// and sets it as the document info. Returns the object number.
func (w *PDFWriter) SetMetadata(metadata *Metadata) int {
	if metadata == nil {
		return 0
	}

	dict := Dictionary{}
	for key, value := range map[string]string{
		"Title":    metadata.Title,
		"Author":   metadata.Author,
		"Subject":  metadata.Subject,
		"Creator":  metadata.Creator,
		"Producer": metadata.Producer,
	} {
		if value != "" {
			dict[key] = value
		}
	}
	if !metadata.CreationDate.IsZero() {
		dict["CreationDate"] = FormatDate(metadata.CreationDate)
		dict["ModDate"] = FormatDate(metadata.CreationDate)
	}

	objNum := w.AddObject(FormatDictionary(dict))
	w.SetInfo(objNum)
	return objNum
}

// FormatDate formats t as a PDF date: D:YYYYMMDDHHmmSSOHH'mm
func FormatDate(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d", t.Format("20060102150405"), sign, offset/3600, (offset%3600)/60)
}
