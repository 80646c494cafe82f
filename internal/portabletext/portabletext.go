// Package portabletext decodes CMS rich text fields that may hold either a
// plain string or an array of structured blocks, and renders them.
package portabletext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Span is an inline run of text inside a block.
type Span struct {
	Type  string   `json:"_type,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef annotates spans, e.g. links. Spans reference it by key.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// Block is one paragraph, heading, quote or list item.
type Block struct {
	Type     string    `json:"_type,omitempty"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
}

// Text holds either Plain or Blocks, never both.
type Text struct {
	Plain  string
	Blocks []Block
}

// FromString wraps a plain string.
func FromString(s string) Text {
	return Text{Plain: s}
}

// IsZero reports whether there is nothing to render.
func (t Text) IsZero() bool {
	return t.Plain == "" && len(t.Blocks) == 0
}

// UnmarshalJSON accepts a JSON string, an array of blocks or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = Text{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &t.Plain)
	case '[':
		return json.Unmarshal(data, &t.Blocks)
	default:
		return fmt.Errorf("portabletext: unsupported value %.20q", data)
	}
}

// MarshalJSON writes back the shape that was decoded.
func (t Text) MarshalJSON() ([]byte, error) {
	if len(t.Blocks) > 0 {
		return json.Marshal(t.Blocks)
	}
	if t.Plain == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Plain)
}

// PlainText flattens blocks into newline separated paragraphs.
func (t Text) PlainText() string {
	if len(t.Blocks) == 0 {
		return t.Plain
	}

	lines := make([]string, 0, len(t.Blocks))
	for _, block := range t.Blocks {
		var sb strings.Builder
		for _, span := range block.Children {
			sb.WriteString(span.Text)
		}
		if sb.Len() > 0 {
			lines = append(lines, sb.String())
		}
	}
	return strings.Join(lines, "\n")
}

// HTML renders the text as escaped HTML.
func (t Text) HTML() string {
	if len(t.Blocks) == 0 {
		if t.Plain == "" {
			return ""
		}
		return "<p>" + html.EscapeString(t.Plain) + "</p>"
	}

	var sb strings.Builder
	openList := ""
	closeList := func() {
		if openList != "" {
			sb.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, block := range t.Blocks {
		if block.ListItem != "" {
			tag := "ul"
			if block.ListItem == "number" {
				tag = "ol"
			}
			if openList != tag {
				closeList()
				sb.WriteString("<" + tag + ">")
				openList = tag
			}
			sb.WriteString("<li>" + renderSpans(block) + "</li>")
			continue
		}

		closeList()
		tag := blockTag(block.Style)
		sb.WriteString("<" + tag + ">" + renderSpans(block) + "</" + tag + ">")
	}
	closeList()

	return sb.String()
}

func blockTag(style string) string {
	switch style {
	case "h1", "h2", "h3", "blockquote":
		return style
	default:
		return "p"
	}
}

func renderSpans(block Block) string {
	defs := make(map[string]MarkDef, len(block.MarkDefs))
	for _, def := range block.MarkDefs {
		defs[def.Key] = def
	}

	var sb strings.Builder
	for _, span := range block.Children {
		text := html.EscapeString(span.Text)
		// apply marks inside-out so the first mark is outermost
		for i := len(span.Marks) - 1; i >= 0; i-- {
			mark := span.Marks[i]
			switch mark {
			case "strong":
				text = "<strong>" + text + "</strong>"
			case "em":
				text = "<em>" + text + "</em>"
			default:
				if def, ok := defs[mark]; ok && def.Type == "link" && def.Href != "" {
					text = `<a href="` + html.EscapeString(def.Href) + `" target="_blank" rel="noopener noreferrer">` + text + "</a>"
				}
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}
