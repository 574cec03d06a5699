package audit

import "encoding/json"

// Metadata is the structured diff payload attached to an audit record.
// Known shapes are modelled explicitly; Freeform is the catch-all for
// forward compatibility.
type Metadata interface {
	Kind() string
}

// EntityRef names a related entity inside a diff.
type EntityRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RelationDiff records a full-replace relation update.
type RelationDiff struct {
	Before  []EntityRef `json:"before"`
	After   []EntityRef `json:"after"`
	Added   []EntityRef `json:"added"`
	Removed []EntityRef `json:"removed"`
}

func (RelationDiff) Kind() string { return "relation_diff" }

// FieldDiff records a single field change.
type FieldDiff struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

func (FieldDiff) Kind() string { return "field_diff" }

// Freeform carries arbitrary JSON metadata.
type Freeform map[string]any

func (Freeform) Kind() string { return "freeform" }

type envelope struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

func marshalMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(envelope{Kind: m.Kind(), Data: m})
}
