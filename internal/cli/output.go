package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"gopkg.in/yaml.v3"

	"github.com/xixipi-lining/iceberg-rest-client/auth"
)

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "text", "json", "yaml":
		return &printer{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q (expected text, json, yaml)", errConfig, format)
	}
}

// structured writes v as json or yaml and reports whether it did.
func (p *printer) structured(v any) (bool, error) {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func (p *printer) properties(props iceberg.Properties) error {
	if props == nil {
		props = iceberg.Properties{}
	}
	if ok, err := p.structured(map[string]string(props)); ok {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(props)) {
		fmt.Fprintf(p.w, "%s=%s\n", k, props[k])
	}
	return nil
}

func (p *printer) identifiers(ids []table.Identifier) error {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, strings.Join(id, "."))
	}
	if ok, err := p.structured(names); ok {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(p.w, n)
	}
	return nil
}

func (p *printer) boolean(v bool) error {
	if ok, err := p.structured(map[string]bool{"exists": v}); ok {
		return err
	}
	fmt.Fprintln(p.w, v)
	return nil
}

type fieldView struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

type tableView struct {
	Identifier       string            `json:"identifier" yaml:"identifier"`
	UUID             string            `json:"uuid" yaml:"uuid"`
	Location         string            `json:"location" yaml:"location"`
	MetadataLocation string            `json:"metadata-location" yaml:"metadata-location"`
	SchemaID         int               `json:"schema-id" yaml:"schema-id"`
	Fields           []fieldView       `json:"fields" yaml:"fields"`
	Properties       map[string]string `json:"properties" yaml:"properties"`
}

func (p *printer) table(v tableView) error {
	if ok, err := p.structured(v); ok {
		return err
	}
	fmt.Fprintf(p.w, "Table:             %s\n", v.Identifier)
	fmt.Fprintf(p.w, "UUID:              %s\n", v.UUID)
	fmt.Fprintf(p.w, "Location:          %s\n", v.Location)
	fmt.Fprintf(p.w, "Metadata location: %s\n", v.MetadataLocation)
	fmt.Fprintf(p.w, "Schema:            %d\n", v.SchemaID)
	for _, f := range v.Fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(p.w, "  %d: %s %s %s\n", f.ID, f.Name, f.Type, req)
	}
	if len(v.Properties) > 0 {
		fmt.Fprintln(p.w, "Properties:")
		for _, k := range slices.Sorted(maps.Keys(v.Properties)) {
			fmt.Fprintf(p.w, "  %s=%s\n", k, v.Properties[k])
		}
	}
	return nil
}

func (p *printer) summary(updated, removed, missing []string) error {
	v := map[string][]string{"updated": updated, "removed": removed, "missing": missing}
	if ok, err := p.structured(v); ok {
		return err
	}
	fmt.Fprintf(p.w, "updated: %s\n", strings.Join(updated, ", "))
	fmt.Fprintf(p.w, "removed: %s\n", strings.Join(removed, ", "))
	fmt.Fprintf(p.w, "missing: %s\n", strings.Join(missing, ", "))
	return nil
}

func (p *printer) message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if ok, err := p.structured(map[string]string{"result": msg}); ok {
		return err
	}
	fmt.Fprintln(p.w, msg)
	return nil
}

// redact hides secrets before properties are printed.
func redact(props iceberg.Properties) iceberg.Properties {
	for _, k := range []string{auth.KeyToken, auth.KeyCredential} {
		if _, ok := props[k]; ok {
			props[k] = "****"
		}
	}
	return props
}
