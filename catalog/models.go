package catalog

import (
	"encoding/json"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"

	"github.com/xixipi-lining/iceberg-rest-client/ident"
)

type configResponse struct {
	Defaults  iceberg.Properties `json:"defaults"`
	Overrides iceberg.Properties `json:"overrides"`
}

type listNamespacesResponse struct {
	Namespaces []table.Identifier `json:"namespaces"`
}

type namespaceBody struct {
	Namespace  table.Identifier   `json:"namespace"`
	Properties iceberg.Properties `json:"properties,omitempty"`
}

type updatePropertiesRequest struct {
	Removals []string           `json:"removals"`
	Updates  iceberg.Properties `json:"updates"`
}

// PropertiesUpdateSummary reports what a namespace property update changed.
type PropertiesUpdateSummary struct {
	Removed []string `json:"removed"`
	Updated []string `json:"updated"`
	Missing []string `json:"missing"`
}

type listTablesResponse struct {
	Identifiers []ident.Identifier `json:"identifiers"`
}

type createTableRequest struct {
	Name          string                 `json:"name"`
	Schema        *iceberg.Schema        `json:"schema"`
	Location      string                 `json:"location,omitempty"`
	PartitionSpec *iceberg.PartitionSpec `json:"partition-spec,omitempty"`
	WriteOrder    *table.SortOrder       `json:"write-order,omitempty"`
	StageCreate   bool                   `json:"stage-create"`
	Props         iceberg.Properties     `json:"properties,omitempty"`
}

type registerTableRequest struct {
	Name             string `json:"name"`
	MetadataLocation string `json:"metadata-location"`
}

type loadTableResponse struct {
	MetadataLoc string             `json:"metadata-location"`
	RawMetadata json.RawMessage    `json:"metadata"`
	Config      iceberg.Properties `json:"config"`
}

type commitTableRequest struct {
	Identifier   ident.Identifier    `json:"identifier"`
	Requirements []table.Requirement `json:"requirements"`
	Updates      []table.Update      `json:"updates"`
}

type commitTableResponse struct {
	MetadataLoc string          `json:"metadata-location"`
	RawMetadata json.RawMessage `json:"metadata"`
}

// CommitTableResponse is the table state after a successful commit.
type CommitTableResponse struct {
	MetadataLocation string
	Metadata         table.Metadata
}

type renameTableRequest struct {
	Source      ident.Identifier `json:"source"`
	Destination ident.Identifier `json:"destination"`
}
