package api

import (
	"encoding/json"
	"fmt"
)

// ContentKind tags the variants of raw inbound message content.
type ContentKind int

const (
	// ContentPlainText is an ordinary string body.
	ContentPlainText ContentKind = iota
	// ContentParts is a list of typed parts (text / image_url).
	ContentParts
	// ContentLegacyAnalysis is the old inline analysis object shape
	// ({explanation, code?, plot?|chart?}).
	ContentLegacyAnalysis
)

// ContentPart is one entry of a multimodal parts array.
type ContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ImagePartURL `json:"image_url,omitempty"`
}

// ImagePartURL wraps the url of an image_url part.
type ImagePartURL struct {
	URL string `json:"url"`
}

// LegacyAnalysis is the inline analysis payload older backends embedded
// directly in the content field.
type LegacyAnalysis struct {
	Explanation string `json:"explanation"`
	Code        string `json:"code,omitempty"`
	Plot        string `json:"plot,omitempty"`
	Chart       string `json:"chart,omitempty"`
}

// ChartData returns the chart payload regardless of which legacy field
// carried it.
func (l LegacyAnalysis) ChartData() string {
	if l.Plot != "" {
		return l.Plot
	}
	return l.Chart
}

// Content is the tagged union of every content shape the backend has been
// observed to emit: a plain string, a multimodal parts array, the legacy
// inline analysis object, or an arbitrary object (stringified as a last
// resort). The shape-sniffing happens here, once, so nothing downstream
// ever inspects raw JSON again.
type Content struct {
	Kind   ContentKind
	Text   string
	Parts  []ContentPart
	Legacy *LegacyAnalysis
}

// UnmarshalJSON sniffs the wire shape and populates exactly one variant.
func (c *Content) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c.Kind = ContentPlainText
		c.Text = s
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(b, &parts); err == nil {
		c.Kind = ContentParts
		c.Parts = parts
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("unrecognized content shape: %w", err)
	}
	if _, ok := obj["explanation"]; ok {
		var legacy LegacyAnalysis
		if err := json.Unmarshal(b, &legacy); err != nil {
			return fmt.Errorf("malformed analysis content: %w", err)
		}
		c.Kind = ContentLegacyAnalysis
		c.Legacy = &legacy
		c.Text = legacy.Explanation
		return nil
	}

	// Unknown object: keep the compact JSON text so it still renders.
	compact, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	c.Kind = ContentPlainText
	c.Text = string(compact)
	return nil
}

// MarshalJSON round-trips the variant that was parsed.
func (c Content) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContentParts:
		return json.Marshal(c.Parts)
	case ContentLegacyAnalysis:
		return json.Marshal(c.Legacy)
	default:
		return json.Marshal(c.Text)
	}
}
