package catalog

import (
	"errors"
	"maps"

	"github.com/apache/iceberg-go"
)

const (
	KeyURI       = "uri"
	KeyWarehouse = "warehouse"
	KeyPrefix    = "prefix"
)

var ErrMissingURI = errors.New("catalog uri is required")

// MergeProperties folds the server config document into the caller's
// properties. Later arguments win: defaults < props < overrides.
func MergeProperties(defaults, props, overrides iceberg.Properties) iceberg.Properties {
	merged := make(iceberg.Properties, len(defaults)+len(props)+len(overrides))
	maps.Copy(merged, defaults)
	maps.Copy(merged, props)
	maps.Copy(merged, overrides)
	return merged
}
