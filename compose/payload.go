package compose

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// payload is the decoded body of a data URI or of bare base64 text
type payload struct {
	MediaType string // "image/png", "" for bare base64
	Data      []byte
}

// decodePayload accepts "data:<type>;base64,<data>" or bare base64
func decodePayload(s string) (*payload, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		du, err := dataurl.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid data URI: %w", err)
		}
		return &payload{MediaType: strings.ToLower(du.Type + "/" + du.Subtype), Data: du.Data}, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
	}
	return &payload{Data: data}, nil
}

// subtype returns the part after "image/", e.g. "png"
func (p *payload) subtype() string {
	_, sub, _ := strings.Cut(p.MediaType, "/")
	return sub
}
