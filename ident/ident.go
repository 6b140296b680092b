// Package ident converts hierarchical catalog identifiers into the URL path
// and JSON forms used by the REST catalog protocol.
package ident

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apache/iceberg-go/table"
	"github.com/oapi-codegen/runtime"
)

// Separator joins namespace levels inside a single path segment.
const Separator = "\x1F"

var ErrInvalidIdentifier = errors.New("invalid identifier")

// Path is the URL form of a table identifier: the joined namespace and the
// table name, both unescaped.
type Path struct {
	Namespace string
	Table     string
}

// Identifier is the JSON form of a table identifier.
type Identifier struct {
	Namespace []string `json:"namespace"`
	Name      string   `json:"name"`
}

// Ident rebuilds the flat identifier.
func (i Identifier) Ident() table.Identifier {
	id := make(table.Identifier, 0, len(i.Namespace)+1)
	id = append(id, i.Namespace...)
	return append(id, i.Name)
}

// TablePath splits a table identifier for use in a URL path. At least a
// namespace level and a table name are required.
func TablePath(id table.Identifier) (Path, error) {
	if len(id) < 2 {
		return Path{}, fmt.Errorf("%w: table identifier %q needs a namespace and a name", ErrInvalidIdentifier, strings.Join(id, "."))
	}
	return Path{
		Namespace: strings.Join(id[:len(id)-1], Separator),
		Table:     id[len(id)-1],
	}, nil
}

// NamespacePath joins a namespace identifier into one path segment.
func NamespacePath(ns table.Identifier) (string, error) {
	if len(ns) < 1 {
		return "", fmt.Errorf("%w: empty namespace", ErrInvalidIdentifier)
	}
	return strings.Join(ns, Separator), nil
}

// TableJSON splits a table identifier into its request body form.
func TableJSON(id table.Identifier) (Identifier, error) {
	if len(id) < 2 {
		return Identifier{}, fmt.Errorf("%w: table identifier %q needs a namespace and a name", ErrInvalidIdentifier, strings.Join(id, "."))
	}
	ns := make([]string, len(id)-1)
	copy(ns, id[:len(id)-1])
	return Identifier{Namespace: ns, Name: id[len(id)-1]}, nil
}

// SplitNamespace reverses NamespacePath. Segments never contain Separator.
func SplitNamespace(path string) table.Identifier {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// Escape renders a path parameter the way generated OpenAPI clients do.
func Escape(name, value string) (string, error) {
	return runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
}
