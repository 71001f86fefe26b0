package sitemap

import (
	"encoding/json"
	"fmt"
)

// Wire names of the fields every fetched document may carry.
const (
	FieldID          = "_id"
	FieldType        = "_type"
	FieldSlug        = "slug"
	FieldUpdatedAt   = "_updatedAt"
	FieldPublishedAt = "publishedAt"
)

// Document is a content record returned by the CMS.
// Fields not known to the renderer are kept in Extra so that
// DateFieldPerType can point at any projected field.
type Document struct {
	Extra       map[string]any `json:"-"`
	ID          string         `json:"_id,omitempty"`
	Type        string         `json:"_type"`
	Slug        string         `json:"slug,omitempty"`
	UpdatedAt   string         `json:"_updatedAt,omitempty"`
	PublishedAt string         `json:"publishedAt,omitempty"`
}

// Field returns the value stored under a wire field name.
func (d Document) Field(name string) (any, bool) {
	switch name {
	case FieldID:
		return d.ID, d.ID != ""
	case FieldType:
		return d.Type, d.Type != ""
	case FieldSlug:
		return d.Slug, d.Slug != ""
	case FieldUpdatedAt:
		return d.UpdatedAt, d.UpdatedAt != ""
	case FieldPublishedAt:
		return d.PublishedAt, d.PublishedAt != ""
	}

	v, ok := d.Extra[name]
	if !ok || v == nil {
		return nil, false
	}

	if s, isStr := v.(string); isStr && s == "" {
		return nil, false
	}

	return v, true
}

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
// The slug may be a plain string or a Sanity slug object ({"current": "..."}).
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	*d = Document{}

	for key, value := range raw {
		var err error

		switch key {
		case FieldID:
			err = decodeString(value, &d.ID)
		case FieldType:
			err = decodeString(value, &d.Type)
		case FieldSlug:
			d.Slug, err = decodeSlug(value)
		case FieldUpdatedAt:
			err = decodeString(value, &d.UpdatedAt)
		case FieldPublishedAt:
			err = decodeString(value, &d.PublishedAt)
		default:
			var v any
			if err = json.Unmarshal(value, &v); err == nil {
				if d.Extra == nil {
					d.Extra = make(map[string]any)
				}

				d.Extra[key] = v
			}
		}

		if err != nil {
			return fmt.Errorf("failed to decode document field %q: %w", key, err)
		}
	}

	return nil
}

// MarshalJSON writes the known fields and Extra back into a single object.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+5)
	for k, v := range d.Extra {
		out[k] = v
	}

	out[FieldType] = d.Type

	if d.ID != "" {
		out[FieldID] = d.ID
	}

	if d.Slug != "" {
		out[FieldSlug] = d.Slug
	}

	if d.UpdatedAt != "" {
		out[FieldUpdatedAt] = d.UpdatedAt
	}

	if d.PublishedAt != "" {
		out[FieldPublishedAt] = d.PublishedAt
	}

	return json.Marshal(out)
}

func decodeString(value json.RawMessage, target *string) error {
	var s *string
	if err := json.Unmarshal(value, &s); err != nil {
		return err
	}

	if s != nil {
		*target = *s
	}

	return nil
}

func decodeSlug(value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, nil
	}

	var obj *struct {
		Current string `json:"current"`
	}
	if err := json.Unmarshal(value, &obj); err != nil {
		return "", err
	}

	if obj == nil {
		return "", nil
	}

	return obj.Current, nil
}
