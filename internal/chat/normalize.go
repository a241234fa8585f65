package chat

import (
	"strings"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
)

// defaultImageFormat is used when an image artifact carries no usable
// format tag.
const defaultImageFormat = "png"

var knownImageFormats = map[string]string{
	"png":  "png",
	"jpeg": "jpeg",
	"jpg":  "jpeg",
	"gif":  "gif",
	"webp": "webp",
}

var analysisKeywords = []string{"analysis", "chart", "plot"}

// imageRef turns an image artifact into a renderable reference. Explicit
// URLs and self-describing payloads pass through verbatim; bare base64
// payloads get a data URI synthesized around them.
func imageRef(a api.Artifact) string {
	if a.URL != "" {
		return a.URL
	}
	payload := a.Payload()
	if strings.HasPrefix(payload, "data:") || strings.Contains(payload, "://") {
		return payload
	}
	format := knownImageFormats[strings.ToLower(a.Format)]
	if format == "" {
		format = defaultImageFormat
	}
	return "data:image/" + format + ";base64," + payload
}

// isMimeChart reports whether a chart payload is an encoded image rather
// than a JSON figure spec.
func isMimeChart(payload string) bool {
	trimmed := strings.TrimSpace(payload)
	return !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[")
}

// applyArtifacts folds a typed artifact list into a message: images make
// it a vision turn, code and charts make it a data turn (a chart wins even
// over vision), a text artifact merges into the existing bundle. The
// first artifact of each kind is authoritative.
func applyArtifacts(m *Message, artifacts []api.Artifact) {
	var images []string
	for _, a := range artifacts {
		if a.Kind == api.ArtifactImage {
			images = append(images, imageRef(a))
		}
	}
	if len(images) > 0 {
		m.Modality = ModalityVision
		m.ImageURLs = images
		m.ImageURL = images[0]
	}

	for _, a := range artifacts {
		if a.Kind == api.ArtifactCode && m.Code == "" {
			m.Code = a.Payload()
			if m.Modality == ModalityText {
				m.Modality = ModalityData
			}
		}
	}

	for _, a := range artifacts {
		if a.Kind != api.ArtifactChart {
			continue
		}
		if m.Artifact == nil || m.Artifact.Chart == "" {
			payload := a.Payload()
			if m.Artifact == nil {
				m.Artifact = &ArtifactBundle{}
			}
			m.Artifact.Chart = payload
			m.Artifact.Raw = payload
			m.Artifact.IsMime = isMimeChart(payload)
		}
		// Chart presence is the authoritative signal of an analysis
		// turn, even over vision.
		m.Modality = ModalityData
	}

	for _, a := range artifacts {
		if a.Kind == api.ArtifactText {
			if m.Artifact == nil {
				m.Artifact = &ArtifactBundle{}
			}
			if m.Artifact.Text == "" {
				m.Artifact.Text = a.Payload()
			}
		}
	}
}

// normalizeMessage converts one raw backend message into the normalized
// model. The second return is false for roles that are filtered out
// entirely (system, tool).
func normalizeMessage(raw api.RawMessage, id string) (Message, bool) {
	role := Role(raw.Role)
	if role != RoleUser && role != RoleAssistant {
		return Message{}, false
	}

	m := Message{
		ID:        id,
		Role:      role,
		Modality:  ModalityText,
		Timestamp: raw.Timestamp,
	}

	if len(raw.Artifacts) > 0 {
		m.Content = contentText(raw.Content)
		applyArtifacts(&m, raw.Artifacts)
		return m, true
	}

	switch raw.Content.Kind {
	case api.ContentParts:
		var images []string
		for _, p := range raw.Content.Parts {
			switch p.Type {
			case "text":
				if m.Content == "" {
					m.Content = p.Text
				}
			case "image_url":
				if p.ImageURL != nil && p.ImageURL.URL != "" {
					images = append(images, p.ImageURL.URL)
				}
			}
		}
		if len(images) > 0 {
			m.Modality = ModalityVision
			m.ImageURLs = images
			m.ImageURL = images[0]
		}

	case api.ContentLegacyAnalysis:
		legacy := raw.Content.Legacy
		m.Content = legacy.Explanation
		if legacy.Code != "" {
			m.Code = legacy.Code
			if m.Modality == ModalityText {
				m.Modality = ModalityData
			}
		}
		if chart := legacy.ChartData(); chart != "" {
			m.Artifact = &ArtifactBundle{
				Chart:  chart,
				Raw:    chart,
				IsMime: isMimeChart(chart),
			}
			m.Modality = ModalityData
		}

	default:
		m.Content = raw.Content.Text
		if m.Modality == ModalityText && containsAnalysisKeyword(m.Content) {
			m.Modality = ModalityData
		}
	}

	return m, true
}

// contentText extracts the plain text of any content variant, for
// messages whose shape is already explained by their artifact list.
func contentText(c api.Content) string {
	if c.Kind == api.ContentParts {
		for _, p := range c.Parts {
			if p.Type == "text" {
				return p.Text
			}
		}
		return ""
	}
	return c.Text
}

func containsAnalysisKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range analysisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// HistoryResult is a full converted session history plus the session-wide
// side effects of the conversion: the dataset preview from the first
// decodable CSV artifact, the staged-CSV record derived from it, every
// artifact id seen anywhere in history, and whether any image artifact
// exists.
type HistoryResult struct {
	Messages    []Message
	Dataset     Dataset
	CSV         *UploadedCSV
	ArtifactIDs []string
	HasImages   bool
	// DecodeErrs collects per-artifact CSV decode failures; each one was
	// skipped, never fatal.
	DecodeErrs []error
}

// ConvertHistory normalizes a session's raw history. Message ids are
// deterministic in (sessionID, output index). The CSV scan stops at the
// first artifact that decodes cleanly; artifacts that fail to decode are
// recorded and skipped.
func ConvertHistory(sessionID string, raws []api.RawMessage) HistoryResult {
	var res HistoryResult

	for _, raw := range raws {
		m, ok := normalizeMessage(raw, historyMessageID(sessionID, len(res.Messages)))
		if !ok {
			continue
		}
		res.Messages = append(res.Messages, m)
	}

	for _, raw := range raws {
		for _, a := range raw.Artifacts {
			if a.ArtifactID != "" {
				res.ArtifactIDs = append(res.ArtifactIDs, a.ArtifactID)
			}
			if a.Kind == api.ArtifactImage {
				res.HasImages = true
			}
			if a.Kind != api.ArtifactCSV || res.CSV != nil {
				continue
			}
			ds, _, err := decodeCSVArtifact(a.Payload())
			if err != nil {
				res.DecodeErrs = append(res.DecodeErrs, &HistoryDecodeError{ArtifactID: a.ArtifactID, Err: err})
				continue
			}
			res.Dataset = ds
			res.CSV = &UploadedCSV{
				ArtifactID:  a.ArtifactID,
				Description: a.Description,
				Columns:     ds.Columns,
				NumRows:     ds.NumRows,
			}
		}
	}

	return res
}
