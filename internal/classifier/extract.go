package classifier

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Extractor pulls answer text out of one known response shape. It returns ""
// when the body does not have that shape.
type Extractor struct {
	Name string
	Fn   func(body []byte) string
}

// DefaultExtractors lists the response shapes the generative endpoint has been
// seen to return, most specific first. Support a new shape by appending here.
func DefaultExtractors() []Extractor {
	return []Extractor{
		{Name: "candidates.output", Fn: pathString("candidates.0.output")},
		{Name: "candidates.content.parts", Fn: pathJoined("candidates.0.content.parts.#.text")},
		{Name: "output.content", Fn: pathJoined("output.0.content.#.text")},
		{Name: "result.output_text", Fn: pathString("result.output_text")},
		{Name: "raw-string", Fn: rawString},
	}
}

// ExtractText runs extractors in order and returns the first non-empty
// trimmed text along with the extractor name.
func ExtractText(body []byte, extractors []Extractor) (text, shape string) {
	if !gjson.ValidBytes(body) {
		return "", ""
	}
	for _, ex := range extractors {
		if t := strings.TrimSpace(ex.Fn(body)); t != "" {
			return t, ex.Name
		}
	}
	return "", ""
}

func pathString(path string) func([]byte) string {
	return func(body []byte) string {
		r := gjson.GetBytes(body, path)
		if r.Type != gjson.String {
			return ""
		}
		return r.Str
	}
}

// pathJoined concatenates every string produced by a '#' query.
func pathJoined(path string) func([]byte) string {
	return func(body []byte) string {
		r := gjson.GetBytes(body, path)
		if !r.IsArray() {
			return ""
		}
		var b strings.Builder
		for _, part := range r.Array() {
			if part.Type == gjson.String {
				b.WriteString(part.Str)
			}
		}
		return b.String()
	}
}

// rawString accepts a body that is itself a bare JSON string.
func rawString(body []byte) string {
	r := gjson.ParseBytes(body)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
