package catalogtest

import (
	"encoding/json"
)

type Identifier struct {
	Namespace []string `json:"namespace"`
	Name      string   `json:"name"`
}

type configResponse struct {
	Defaults  map[string]string `json:"defaults"`
	Overrides map[string]string `json:"overrides"`
}

type tokenResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int    `json:"expires_in"`
	IssuedTokenType string `json:"issued_token_type"`
}

type namespaceBody struct {
	Namespace  []string          `json:"namespace"`
	Properties map[string]string `json:"properties"`
}

type updatePropertiesRequest struct {
	Removals []string          `json:"removals"`
	Updates  map[string]string `json:"updates"`
}

type updatePropertiesResponse struct {
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
	Missing []string `json:"missing"`
}

type listTablesResponse struct {
	Identifiers []Identifier `json:"identifiers"`
}

type createTableRequest struct {
	Name       string            `json:"name"`
	Schema     json.RawMessage   `json:"schema"`
	Location   string            `json:"location,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type registerTableRequest struct {
	Name             string `json:"name"`
	MetadataLocation string `json:"metadata-location"`
}

type loadTableResponse struct {
	MetadataLoc string            `json:"metadata-location"`
	Metadata    json.RawMessage   `json:"metadata"`
	Config      map[string]string `json:"config,omitempty"`
}

type commitTableRequest struct {
	Identifier   Identifier        `json:"identifier"`
	Requirements []json.RawMessage `json:"requirements"`
	Updates      []json.RawMessage `json:"updates"`
}

type commitTableResponse struct {
	MetadataLoc string          `json:"metadata-location"`
	Metadata    json.RawMessage `json:"metadata"`
}

type renameTableRequest struct {
	Source      Identifier `json:"source"`
	Destination Identifier `json:"destination"`
}
