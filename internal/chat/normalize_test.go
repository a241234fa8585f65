package chat

import (
	"encoding/base64"
	"testing"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
)

func TestImageRef(t *testing.T) {
	tests := []struct {
		name     string
		artifact api.Artifact
		want     string
	}{
		{
			name:     "explicit url wins",
			artifact: api.Artifact{URL: "https://cdn/img.png", Data: "abc"},
			want:     "https://cdn/img.png",
		},
		{
			name:     "data uri passes through",
			artifact: api.Artifact{Data: "data:image/png;base64,abc"},
			want:     "data:image/png;base64,abc",
		},
		{
			name:     "scheme-bearing payload passes through",
			artifact: api.Artifact{Data: "https://elsewhere/pic.jpg"},
			want:     "https://elsewhere/pic.jpg",
		},
		{
			name:     "bare base64 gets a data uri",
			artifact: api.Artifact{Data: "aGVsbG8=", Format: "jpeg"},
			want:     "data:image/jpeg;base64,aGVsbG8=",
		},
		{
			name:     "jpg normalizes to jpeg",
			artifact: api.Artifact{Data: "aGVsbG8=", Format: "JPG"},
			want:     "data:image/jpeg;base64,aGVsbG8=",
		},
		{
			name:     "unknown format falls back to png",
			artifact: api.Artifact{Data: "aGVsbG8=", Format: "tiff"},
			want:     "data:image/png;base64,aGVsbG8=",
		},
		{
			name:     "missing format falls back to png",
			artifact: api.Artifact{Data: "aGVsbG8="},
			want:     "data:image/png;base64,aGVsbG8=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imageRef(tt.artifact); got != tt.want {
				t.Errorf("imageRef() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyArtifacts_Images(t *testing.T) {
	m := Message{Modality: ModalityText}
	applyArtifacts(&m, []api.Artifact{
		{Kind: api.ArtifactImage, URL: "https://a/1.png"},
		{Kind: api.ArtifactImage, URL: "https://a/2.png"},
	})

	if m.Modality != ModalityVision {
		t.Errorf("expected vision, got %s", m.Modality)
	}
	if len(m.ImageURLs) != 2 {
		t.Fatalf("expected 2 image urls, got %d", len(m.ImageURLs))
	}
	if m.ImageURL != m.ImageURLs[0] {
		t.Errorf("single url must mirror the first list entry: %q vs %q", m.ImageURL, m.ImageURLs[0])
	}
}

func TestApplyArtifacts_CodePromotesTextOnly(t *testing.T) {
	m := Message{Modality: ModalityText}
	applyArtifacts(&m, []api.Artifact{{Kind: api.ArtifactCode, Content: "df.head()"}})
	if m.Code != "df.head()" {
		t.Errorf("code not captured: %q", m.Code)
	}
	if m.Modality != ModalityData {
		t.Errorf("code should promote text to data, got %s", m.Modality)
	}

	// Vision stays vision when only code is added.
	v := Message{Modality: ModalityText}
	applyArtifacts(&v, []api.Artifact{
		{Kind: api.ArtifactImage, URL: "https://a/1.png"},
		{Kind: api.ArtifactCode, Content: "print(1)"},
	})
	if v.Modality != ModalityVision {
		t.Errorf("code must not demote vision, got %s", v.Modality)
	}
}

func TestApplyArtifacts_ChartWinsOverVision(t *testing.T) {
	m := Message{Modality: ModalityText}
	applyArtifacts(&m, []api.Artifact{
		{Kind: api.ArtifactImage, URL: "https://a/1.png"},
		{Kind: api.ArtifactChart, Data: `{"data":[]}`},
	})

	if m.Modality != ModalityData {
		t.Errorf("chart must force data even over vision, got %s", m.Modality)
	}
	if m.Artifact == nil || m.Artifact.Chart != `{"data":[]}` {
		t.Fatal("chart payload not captured")
	}
	if m.Artifact.IsMime {
		t.Error("json figure spec must not be flagged as mime")
	}
	if len(m.ImageURLs) != 1 {
		t.Error("image list should survive the chart")
	}
}

func TestApplyArtifacts_MimeChart(t *testing.T) {
	m := Message{Modality: ModalityText}
	applyArtifacts(&m, []api.Artifact{{Kind: api.ArtifactChart, Data: "iVBORw0KGgo="}})
	if m.Artifact == nil || !m.Artifact.IsMime {
		t.Error("base64 chart should be flagged as mime")
	}
}

func TestApplyArtifacts_FirstOfEachKindWins(t *testing.T) {
	m := Message{Modality: ModalityText}
	applyArtifacts(&m, []api.Artifact{
		{Kind: api.ArtifactCode, Content: "first"},
		{Kind: api.ArtifactCode, Content: "second"},
		{Kind: api.ArtifactChart, Data: `{"a":1}`},
		{Kind: api.ArtifactChart, Data: `{"b":2}`},
		{Kind: api.ArtifactText, Content: "summary one"},
		{Kind: api.ArtifactText, Content: "summary two"},
	})

	if m.Code != "first" {
		t.Errorf("expected first code artifact, got %q", m.Code)
	}
	if m.Artifact.Chart != `{"a":1}` {
		t.Errorf("expected first chart artifact, got %q", m.Artifact.Chart)
	}
	if m.Artifact.Text != "summary one" {
		t.Errorf("expected first text artifact, got %q", m.Artifact.Text)
	}
}

func TestNormalizeMessage_RoleFilter(t *testing.T) {
	for _, role := range []string{"system", "tool", "function", ""} {
		if _, ok := normalizeMessage(api.RawMessage{Role: role, Content: textContent("x")}, "id"); ok {
			t.Errorf("role %q should be filtered", role)
		}
	}
	for _, role := range []string{"user", "assistant"} {
		if _, ok := normalizeMessage(api.RawMessage{Role: role, Content: textContent("x")}, "id"); !ok {
			t.Errorf("role %q should survive", role)
		}
	}
}

func TestNormalizeMessage_PartsContent(t *testing.T) {
	raw := api.RawMessage{
		Role: "user",
		Content: api.Content{
			Kind: api.ContentParts,
			Parts: []api.ContentPart{
				{Type: "text", Text: "what is this?"},
				{Type: "image_url", ImageURL: &api.ImagePartURL{URL: "data:image/png;base64,xyz"}},
			},
		},
	}

	m, ok := normalizeMessage(raw, "m0")
	if !ok {
		t.Fatal("message dropped")
	}
	if m.Content != "what is this?" {
		t.Errorf("text part not extracted: %q", m.Content)
	}
	if m.Modality != ModalityVision {
		t.Errorf("image part should make it vision, got %s", m.Modality)
	}
	if m.ImageURL != "data:image/png;base64,xyz" {
		t.Errorf("image url not mirrored: %q", m.ImageURL)
	}
}

func TestNormalizeMessage_LegacyAnalysis(t *testing.T) {
	raw := api.RawMessage{
		Role: "assistant",
		Content: api.Content{
			Kind: api.ContentLegacyAnalysis,
			Legacy: &api.LegacyAnalysis{
				Explanation: "the trend is upward",
				Code:        "df.plot()",
				Plot:        `{"data":[1]}`,
			},
		},
	}

	m, ok := normalizeMessage(raw, "m0")
	if !ok {
		t.Fatal("message dropped")
	}
	if m.Content != "the trend is upward" {
		t.Errorf("explanation not used as content: %q", m.Content)
	}
	if m.Code != "df.plot()" {
		t.Errorf("code not lifted: %q", m.Code)
	}
	if m.Artifact == nil || m.Artifact.Chart != `{"data":[1]}` {
		t.Error("plot not lifted into bundle")
	}
	if m.Modality != ModalityData {
		t.Errorf("analysis message should be data, got %s", m.Modality)
	}
}

func TestNormalizeMessage_LegacyExplanationOnly(t *testing.T) {
	raw := api.RawMessage{
		Role: "assistant",
		Content: api.Content{
			Kind:   api.ContentLegacyAnalysis,
			Legacy: &api.LegacyAnalysis{Explanation: "just words"},
		},
	}

	m, _ := normalizeMessage(raw, "m0")
	if m.Modality != ModalityText {
		t.Errorf("explanation-only legacy content stays text, got %s", m.Modality)
	}
}

func TestNormalizeMessage_KeywordHeuristic(t *testing.T) {
	tests := []struct {
		content string
		want    Modality
	}{
		{"here is your Analysis of the data", ModalityData},
		{"I made a chart for you", ModalityData},
		{"see the plot below", ModalityData},
		{"hello there", ModalityText},
	}
	for _, tt := range tests {
		m, _ := normalizeMessage(api.RawMessage{Role: "assistant", Content: textContent(tt.content)}, "m0")
		if m.Modality != tt.want {
			t.Errorf("content %q: expected %s, got %s", tt.content, tt.want, m.Modality)
		}
	}
}

func TestNormalizeMessage_ArtifactsOverrideContentShape(t *testing.T) {
	raw := api.RawMessage{
		Role:      "assistant",
		Content:   textContent("see the chart"),
		Artifacts: []api.Artifact{{Kind: api.ArtifactImage, URL: "https://a/1.png"}},
	}

	m, _ := normalizeMessage(raw, "m0")
	// The artifact list is authoritative: image makes it vision even
	// though the text mentions a chart.
	if m.Modality != ModalityVision {
		t.Errorf("expected vision from artifact, got %s", m.Modality)
	}
	if m.Content != "see the chart" {
		t.Errorf("content text lost: %q", m.Content)
	}
}

func TestConvertHistory_IDsAndSideEffects(t *testing.T) {
	csvData := base64.StdEncoding.EncodeToString([]byte("a,b\n1,2\n3,4\n"))
	raws := []api.RawMessage{
		{Role: "system", Content: textContent("setup")},
		{Role: "user", Content: textContent("look at this"), Artifacts: []api.Artifact{
			{ArtifactID: "artifact_img1", Kind: api.ArtifactImage, URL: "https://a/1.png"},
		}},
		{Role: "user", Content: textContent("and this"), Artifacts: []api.Artifact{
			{ArtifactID: "artifact_csv1", Kind: api.ArtifactCSV, Data: csvData},
		}},
		{Role: "assistant", Content: textContent("done")},
	}

	res := ConvertHistory("sess", raws)

	if len(res.Messages) != 3 {
		t.Fatalf("expected 3 messages after filtering, got %d", len(res.Messages))
	}
	// Ids number the surviving messages, not the raw ones.
	for i, m := range res.Messages {
		want := historyMessageID("sess", i)
		if m.ID != want {
			t.Errorf("message %d: expected id %q, got %q", i, want, m.ID)
		}
	}
	if !res.HasImages {
		t.Error("image artifact should set HasImages")
	}
	if len(res.ArtifactIDs) != 2 {
		t.Errorf("expected 2 artifact ids, got %v", res.ArtifactIDs)
	}
	if res.CSV == nil || res.CSV.ArtifactID != "artifact_csv1" {
		t.Fatal("csv artifact not staged")
	}
	if res.Dataset.NumRows != 2 || len(res.Dataset.Columns) != 2 {
		t.Errorf("unexpected dataset: %+v", res.Dataset)
	}
	if len(res.Dataset.Head) != 2 || res.Dataset.Head[0][0] != "1" || res.Dataset.Head[1][1] != "4" {
		t.Errorf("unexpected head: %v", res.Dataset.Head)
	}
}

func TestConvertHistory_FirstDecodableCSVWins(t *testing.T) {
	good := base64.StdEncoding.EncodeToString([]byte("x,y\n5,6\n"))
	raws := []api.RawMessage{
		{Role: "user", Content: textContent("one"), Artifacts: []api.Artifact{
			{ArtifactID: "artifact_bad", Kind: api.ArtifactCSV, Data: "!!not-base64!!"},
		}},
		{Role: "user", Content: textContent("two"), Artifacts: []api.Artifact{
			{ArtifactID: "artifact_good", Kind: api.ArtifactCSV, Data: good},
		}},
		{Role: "user", Content: textContent("three"), Artifacts: []api.Artifact{
			{ArtifactID: "artifact_later", Kind: api.ArtifactCSV, Data: good},
		}},
	}

	res := ConvertHistory("sess", raws)

	if len(res.DecodeErrs) != 1 {
		t.Fatalf("expected 1 decode error, got %d", len(res.DecodeErrs))
	}
	if res.CSV == nil || res.CSV.ArtifactID != "artifact_good" {
		t.Errorf("expected first decodable csv, got %+v", res.CSV)
	}
	// The failure is recorded, never fatal: all messages survive.
	if len(res.Messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(res.Messages))
	}
}

func TestConvertHistory_Empty(t *testing.T) {
	res := ConvertHistory("sess", nil)
	if len(res.Messages) != 0 || res.CSV != nil || res.HasImages {
		t.Errorf("empty history should produce empty result: %+v", res)
	}
}
