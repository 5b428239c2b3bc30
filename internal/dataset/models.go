package dataset

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Item is one 311 request from the ingestion snapshot. Only the identifier,
// the evidence flag, and the creation time are interpreted by the
// coordination core; everything else is carried for filtering and display.
type Item struct {
	RequestID         string
	HasPhoto          bool
	CreatedAt         time.Time
	Text              string
	StatusNotes       string
	ResolutionNotes   string
	ServiceSubtype    string
	ImageURLs         []string
	HoursToResolution float64
	Keywords          []string
	Tags              []string
}

// HasEvidence reports whether the request carries photo evidence. Evidence
// items are systematically preferred by the queue builder because they are
// cheaper to label confidently.
func (it Item) HasEvidence() bool {
	return it.HasPhoto
}

// HasRichContext reports whether the request has photos or responder notes.
func (it Item) HasRichContext() bool {
	return it.HasPhoto || strings.TrimSpace(it.StatusNotes) != "" || strings.TrimSpace(it.ResolutionNotes) != ""
}

type rawItem struct {
	RequestID         string   `json:"request_id"`
	HasPhoto          bool     `json:"has_photo"`
	CreatedAt         string   `json:"created_at"`
	Text              string   `json:"text"`
	StatusNotes       string   `json:"status_notes"`
	ResolutionNotes   string   `json:"resolution_notes"`
	ServiceSubtype    string   `json:"service_subtype"`
	ImageURLs         []string `json:"image_urls"`
	HoursToResolution float64  `json:"hours_to_resolution"`
}

// UnmarshalJSON decodes an ingestion record. Boolean "kw_" and "tag_"
// prefixed keys are collapsed into sorted keyword and tag lists.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var loose map[string]json.RawMessage
	if err := json.Unmarshal(data, &loose); err != nil {
		return err
	}

	*it = Item{
		RequestID:         strings.TrimSpace(raw.RequestID),
		HasPhoto:          raw.HasPhoto,
		CreatedAt:         parseTimestamp(raw.CreatedAt),
		Text:              raw.Text,
		StatusNotes:       raw.StatusNotes,
		ResolutionNotes:   raw.ResolutionNotes,
		ServiceSubtype:    raw.ServiceSubtype,
		ImageURLs:         raw.ImageURLs,
		HoursToResolution: raw.HoursToResolution,
	}

	for key, value := range loose {
		var flag bool
		switch {
		case strings.HasPrefix(key, "kw_"):
			if err := json.Unmarshal(value, &flag); err == nil && flag {
				it.Keywords = append(it.Keywords, strings.TrimPrefix(key, "kw_"))
			}
		case strings.HasPrefix(key, "tag_"):
			if err := json.Unmarshal(value, &flag); err == nil && flag {
				it.Tags = append(it.Tags, strings.TrimPrefix(key, "tag_"))
			}
		}
	}
	sort.Strings(it.Keywords)
	sort.Strings(it.Tags)
	return nil
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
