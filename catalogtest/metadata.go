package catalogtest

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

var defaultSchema = json.RawMessage(`{"type":"struct","schema-id":0,"fields":[{"id":1,"name":"id","required":true,"type":"long"}]}`)

type tableEntry struct {
	namespace   []string
	name        string
	uuid        string
	location    string
	schema      json.RawMessage
	schemaID    int
	lastColumn  int
	props       map[string]string
	version     int
	metadataLoc string
	updatedMs   int64
}

func newTableEntry(namespace []string, name, location string, schema json.RawMessage, props map[string]string) (*tableEntry, error) {
	if len(schema) == 0 {
		schema = defaultSchema
	}
	var head struct {
		SchemaID int `json:"schema-id"`
	}
	if err := json.Unmarshal(schema, &head); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	var tree any
	if err := json.Unmarshal(schema, &tree); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	e := &tableEntry{
		namespace:  append([]string(nil), namespace...),
		name:       name,
		uuid:       uuid.New().String(),
		location:   strings.TrimSuffix(location, "/"),
		schema:     schema,
		schemaID:   head.SchemaID,
		lastColumn: maxFieldID(tree),
		props:      maps.Clone(props),
	}
	if e.props == nil {
		e.props = map[string]string{}
	}
	e.bump()
	return e, nil
}

// bump advances the entry to a new metadata file.
func (e *tableEntry) bump() {
	e.metadataLoc = fmt.Sprintf("%s/metadata/%05d-%s.metadata.json", e.location, e.version, uuid.New().String())
	e.version++
	e.updatedMs = time.Now().UnixMilli()
}

func (e *tableEntry) metadata() json.RawMessage {
	doc := map[string]any{
		"format-version":        2,
		"table-uuid":            e.uuid,
		"location":              e.location,
		"last-sequence-number":  0,
		"last-updated-ms":       e.updatedMs,
		"last-column-id":        e.lastColumn,
		"schemas":               []json.RawMessage{e.schema},
		"current-schema-id":     e.schemaID,
		"partition-specs":       []any{map[string]any{"spec-id": 0, "fields": []any{}}},
		"default-spec-id":       0,
		"last-partition-id":     999,
		"properties":            e.props,
		"sort-orders":           []any{map[string]any{"order-id": 0, "fields": []any{}}},
		"default-sort-order-id": 0,
		"snapshots":             []any{},
		"snapshot-log":          []any{},
		"metadata-log":          []any{},
		"refs":                  map[string]any{},
	}
	b, _ := json.Marshal(doc)
	return b
}

// maxFieldID walks a schema document for the highest assigned field id.
func maxFieldID(v any) int {
	highest := 0
	switch n := v.(type) {
	case map[string]any:
		for k, child := range n {
			switch k {
			case "id", "element-id", "key-id", "value-id":
				if f, ok := child.(float64); ok && int(f) > highest {
					highest = int(f)
				}
			default:
				highest = max(highest, maxFieldID(child))
			}
		}
	case []any:
		for _, child := range n {
			highest = max(highest, maxFieldID(child))
		}
	}
	return highest
}

// apply runs requirement checks and then metadata updates. Only the
// requirement and update kinds the fake understands are honoured; the rest
// are accepted and ignored.
func (e *tableEntry) apply(requirements, updates []json.RawMessage) error {
	for _, raw := range requirements {
		var req struct {
			Type     string `json:"type"`
			UUID     string `json:"uuid"`
			SchemaID *int   `json:"current-schema-id"`
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return err
		}
		switch req.Type {
		case "assert-table-uuid":
			if !strings.EqualFold(req.UUID, e.uuid) {
				return fmt.Errorf("table UUID does not match: %s != %s", req.UUID, e.uuid)
			}
		case "assert-current-schema-id":
			if req.SchemaID != nil && *req.SchemaID != e.schemaID {
				return fmt.Errorf("current schema changed: expected id %d != %d", *req.SchemaID, e.schemaID)
			}
		case "assert-create":
			return fmt.Errorf("table already exists")
		}
	}

	props, location := maps.Clone(e.props), e.location
	for _, raw := range updates {
		var upd struct {
			Action   string            `json:"action"`
			Updates  map[string]string `json:"updates"`
			Removals []string          `json:"removals"`
			Location string            `json:"location"`
		}
		if err := json.Unmarshal(raw, &upd); err != nil {
			return err
		}
		switch upd.Action {
		case "set-properties":
			maps.Copy(props, upd.Updates)
		case "remove-properties":
			for _, k := range upd.Removals {
				delete(props, k)
			}
		case "set-location":
			location = strings.TrimSuffix(upd.Location, "/")
		}
	}

	e.props, e.location = props, location
	e.bump()
	return nil
}
