package wordpress

import (
	"encoding/json"

	"github.com/ZaguanLabs/wptl"
)

// renderedField is the {raw, rendered} shape of title and content.
type renderedField struct {
	Raw      string `json:"raw"`
	Rendered string `json:"rendered"`
}

// text prefers the raw value, which is only present in edit context and
// keeps block comments that the rendered form strips.
func (f renderedField) text() string {
	if f.Raw != "" {
		return f.Raw
	}
	return f.Rendered
}

type pageFields struct {
	ID       int           `json:"id"`
	Title    renderedField `json:"title"`
	Content  renderedField `json:"content"`
	Slug     string        `json:"slug"`
	Status   string        `json:"status"`
	Link     string        `json:"link"`
	Template string        `json:"template"`
	Parent   int           `json:"parent"`
}

func decodePage(data []byte) (*wptl.Page, error) {
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	var f pageFields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &wptl.Page{
		ID:       f.ID,
		Title:    f.Title.text(),
		Content:  f.Content.text(),
		Slug:     f.Slug,
		Status:   f.Status,
		Link:     f.Link,
		Template: f.Template,
		Parent:   f.Parent,
		Metadata: meta,
	}, nil
}

// draftPayload merges the metadata bag with the typed fields. Title and
// content are sent as plain strings, which the API accepts on create.
func draftPayload(p *wptl.Page) ([]byte, error) {
	body := make(map[string]interface{}, len(p.Metadata)+6)
	for k, v := range p.Metadata {
		body[k] = v
	}
	body["title"] = p.Title
	body["content"] = p.Content
	body["status"] = p.Status
	body["slug"] = p.Slug
	if p.Template != "" {
		body["template"] = p.Template
	}
	if p.Parent != 0 {
		body["parent"] = p.Parent
	}
	return json.Marshal(body)
}
