package catalog

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/apache/iceberg-go"
	iceio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
)

// Table is an immutable view of a table at one metadata version. Commit and
// Refresh return new handles.
type Table struct {
	identifier       table.Identifier
	metadataLocation string
	metadata         table.Metadata
	config           iceberg.Properties
	cat              *Catalog

	fsOnce sync.Once
	fs     iceio.IO
	fsErr  error
}

func (t *Table) Identifier() table.Identifier {
	return slices.Clone(t.identifier)
}

func (t *Table) MetadataLocation() string {
	return t.metadataLocation
}

func (t *Table) Metadata() table.Metadata {
	return t.metadata
}

// Config is the table-scoped configuration returned by the server, such as
// vended storage credentials.
func (t *Table) Config() iceberg.Properties {
	return maps.Clone(t.config)
}

// Properties are the table properties recorded in its metadata.
func (t *Table) Properties() iceberg.Properties {
	return maps.Clone(t.metadata.Properties())
}

// IOProperties is the property set handed to the file-access provider.
// Server config wins over metadata properties.
func (t *Table) IOProperties() iceberg.Properties {
	props := make(iceberg.Properties, len(t.metadata.Properties())+len(t.config))
	maps.Copy(props, t.metadata.Properties())
	maps.Copy(props, t.config)
	return props
}

// FS returns the file-access provider for the current metadata file. It is
// built on first use.
func (t *Table) FS(ctx context.Context) (iceio.IO, error) {
	t.fsOnce.Do(func() {
		t.fs, t.fsErr = t.cat.fileIO(ctx, t.IOProperties(), t.metadataLocation)
	})
	return t.fs, t.fsErr
}

func (t *Table) Catalog() *Catalog {
	return t.cat
}

// Commit applies requirements and updates to this table. The handle itself
// is left unchanged.
func (t *Table) Commit(ctx context.Context, requirements []table.Requirement, updates []table.Update) (*Table, error) {
	resp, err := t.cat.CommitTable(ctx, t.identifier, requirements, updates)
	if err != nil {
		return nil, err
	}
	return &Table{
		identifier:       t.identifier,
		metadataLocation: resp.MetadataLocation,
		metadata:         resp.Metadata,
		config:           t.config,
		cat:              t.cat,
	}, nil
}

// Refresh loads the current version of the table.
func (t *Table) Refresh(ctx context.Context) (*Table, error) {
	return t.cat.LoadTable(ctx, t.identifier)
}
