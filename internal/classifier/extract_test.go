package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantText  string
		wantShape string
	}{
		{
			name:      "candidates output",
			body:      `{"candidates":[{"output":"zone8 - Smart Cafe"}]}`,
			wantText:  "zone8 - Smart Cafe",
			wantShape: "candidates.output",
		},
		{
			name:      "candidates content parts joined",
			body:      `{"candidates":[{"content":{"parts":[{"text":"zone2"},{"text":" - ESCAL"}]}}]}`,
			wantText:  "zone2 - ESCAL",
			wantShape: "candidates.content.parts",
		},
		{
			name:      "output content list",
			body:      `{"output":[{"content":[{"text":"zone5 - "},{"text":"Agricultural zone"}]}]}`,
			wantText:  "zone5 - Agricultural zone",
			wantShape: "output.content",
		},
		{
			name:      "flat result",
			body:      `{"result":{"output_text":"  zone7 - Smart Home \n"}}`,
			wantText:  "zone7 - Smart Home",
			wantShape: "result.output_text",
		},
		{
			name:      "raw string",
			body:      `"zone4 - gaming zone"`,
			wantText:  "zone4 - gaming zone",
			wantShape: "raw-string",
		},
		{
			name:      "earlier shape wins",
			body:      `{"candidates":[{"output":"zone1"}],"result":{"output_text":"zone2"}}`,
			wantText:  "zone1",
			wantShape: "candidates.output",
		},
		{
			name:      "blank earlier shape falls through",
			body:      `{"candidates":[{"output":"   "}],"result":{"output_text":"zone6"}}`,
			wantText:  "zone6",
			wantShape: "result.output_text",
		},
		{
			name:      "non-string output ignored",
			body:      `{"candidates":[{"output":42}]}`,
			wantText:  "",
			wantShape: "",
		},
		{name: "unknown shape", body: `{"answer":"zone3"}`},
		{name: "empty object", body: `{}`},
		{name: "invalid json", body: `{"candidates":`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text, shape := ExtractText([]byte(tt.body), DefaultExtractors())
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantShape, shape)
		})
	}
}

func TestExtractText_CustomExtractorAppended(t *testing.T) {
	t.Parallel()
	ex := append(DefaultExtractors(), Extractor{Name: "answer", Fn: pathString("answer")})

	text, shape := ExtractText([]byte(`{"answer":"zone3"}`), ex)
	assert.Equal(t, "zone3", text)
	assert.Equal(t, "answer", shape)
}
