package catalog

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"strconv"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"

	"github.com/xixipi-lining/iceberg-rest-client/ident"
	"github.com/xixipi-lining/iceberg-rest-client/logger"
	"github.com/xixipi-lining/iceberg-rest-client/resterr"
)

var (
	tableNotFound = resterr.Overrides{http.StatusNotFound: resterr.ErrNoSuchTable}
	tableCreate   = resterr.Overrides{
		http.StatusNotFound: resterr.ErrNoSuchNamespace,
		http.StatusConflict: resterr.ErrTableAlreadyExists,
	}
	tableRename = resterr.Overrides{
		http.StatusNotFound: resterr.ErrNoSuchTable,
		http.StatusConflict: resterr.ErrTableAlreadyExists,
	}
	tableCommit = func() resterr.Overrides {
		o := maps.Clone(resterr.CommitOverrides)
		o[http.StatusNotFound] = resterr.ErrNoSuchTable
		return o
	}()
)

// CreateTableOpt configures a table creation request.
type CreateTableOpt func(*createTableRequest)

func WithLocation(location string) CreateTableOpt {
	return func(r *createTableRequest) { r.Location = location }
}

func WithPartitionSpec(spec *iceberg.PartitionSpec) CreateTableOpt {
	return func(r *createTableRequest) { r.PartitionSpec = spec }
}

func WithSortOrder(order table.SortOrder) CreateTableOpt {
	return func(r *createTableRequest) { r.WriteOrder = &order }
}

func WithProperties(props iceberg.Properties) CreateTableOpt {
	return func(r *createTableRequest) { r.Props = props }
}

func (c *Catalog) tableEndpoint(id table.Identifier) (string, error) {
	path, err := ident.TablePath(id)
	if err != nil {
		return "", err
	}
	tbl, err := ident.Escape("table", path.Table)
	if err != nil {
		return "", err
	}
	return c.namespaceEndpoint(ident.SplitNamespace(path.Namespace), "tables", tbl)
}

func (c *Catalog) ListTables(ctx context.Context, ns table.Identifier) ([]table.Identifier, error) {
	endpoint, err := c.namespaceEndpoint(ns, "tables")
	if err != nil {
		return nil, err
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) ([]table.Identifier, error) {
		var resp listTablesResponse
		if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, namespaceNotFound); err != nil {
			return nil, err
		}
		out := make([]table.Identifier, 0, len(resp.Identifiers))
		for _, id := range resp.Identifiers {
			out = append(out, id.Ident())
		}
		return out, nil
	})
}

func (c *Catalog) CreateTable(ctx context.Context, id table.Identifier, schema *iceberg.Schema, opts ...CreateTableOpt) (*Table, error) {
	path, err := ident.TablePath(id)
	if err != nil {
		return nil, err
	}
	endpoint, err := c.namespaceEndpoint(ident.SplitNamespace(path.Namespace), "tables")
	if err != nil {
		return nil, err
	}

	body := createTableRequest{Name: path.Table, Schema: schema}
	for _, opt := range opts {
		opt(&body)
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (*Table, error) {
		var resp loadTableResponse
		if _, err := c.do(ctx, http.MethodPost, endpoint, body, &resp, tableCreate); err != nil {
			return nil, err
		}
		return c.newTable(id, resp)
	})
}

// RegisterTable adds an existing metadata file to the catalog.
func (c *Catalog) RegisterTable(ctx context.Context, id table.Identifier, metadataLocation string) (*Table, error) {
	path, err := ident.TablePath(id)
	if err != nil {
		return nil, err
	}
	endpoint, err := c.namespaceEndpoint(ident.SplitNamespace(path.Namespace), "register")
	if err != nil {
		return nil, err
	}
	body := registerTableRequest{Name: path.Table, MetadataLocation: metadataLocation}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (*Table, error) {
		var resp loadTableResponse
		if _, err := c.do(ctx, http.MethodPost, endpoint, body, &resp, tableCreate); err != nil {
			return nil, err
		}
		return c.newTable(id, resp)
	})
}

func (c *Catalog) LoadTable(ctx context.Context, id table.Identifier) (*Table, error) {
	endpoint, err := c.tableEndpoint(id)
	if err != nil {
		return nil, err
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (*Table, error) {
		var resp loadTableResponse
		if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, tableNotFound); err != nil {
			return nil, err
		}
		return c.newTable(id, resp)
	})
}

func (c *Catalog) DropTable(ctx context.Context, id table.Identifier) error {
	return c.dropTable(ctx, id, false)
}

// PurgeTable drops the table and asks the server to delete its data.
func (c *Catalog) PurgeTable(ctx context.Context, id table.Identifier) error {
	return c.dropTable(ctx, id, true)
}

func (c *Catalog) dropTable(ctx context.Context, id table.Identifier, purge bool) error {
	endpoint, err := c.tableEndpoint(id)
	if err != nil {
		return err
	}
	endpoint += "?" + url.Values{"purgeRequested": {strconv.FormatBool(purge)}}.Encode()

	return reauth(ctx, c.session, c.log, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, tableNotFound)
		return err
	})
}

// RenameTable moves from to to and returns the table loaded under its new
// identifier.
func (c *Catalog) RenameTable(ctx context.Context, from, to table.Identifier) (*Table, error) {
	src, err := ident.TableJSON(from)
	if err != nil {
		return nil, err
	}
	dst, err := ident.TableJSON(to)
	if err != nil {
		return nil, err
	}
	body := renameTableRequest{Source: src, Destination: dst}

	err = reauth(ctx, c.session, c.log, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, c.endpoint("tables", "rename"), body, nil, tableRename)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.LoadTable(ctx, to)
}

func (c *Catalog) CheckTableExists(ctx context.Context, id table.Identifier) (bool, error) {
	endpoint, err := c.tableEndpoint(id)
	if err != nil {
		return false, err
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (bool, error) {
		return c.exists(ctx, endpoint)
	})
}

// CommitTable sends requirements and updates for the server to apply
// atomically. A resterr.ErrCommitStateUnknown failure means the commit may
// or may not have been applied; reload the table before retrying.
func (c *Catalog) CommitTable(ctx context.Context, id table.Identifier, requirements []table.Requirement, updates []table.Update) (CommitTableResponse, error) {
	endpoint, err := c.tableEndpoint(id)
	if err != nil {
		return CommitTableResponse{}, err
	}
	tid, err := ident.TableJSON(id)
	if err != nil {
		return CommitTableResponse{}, err
	}
	if requirements == nil {
		requirements = []table.Requirement{}
	}
	if updates == nil {
		updates = []table.Update{}
	}
	body := commitTableRequest{Identifier: tid, Requirements: requirements, Updates: updates}

	resp, err := withReauth(ctx, c.session, c.log, func(ctx context.Context) (CommitTableResponse, error) {
		var resp commitTableResponse
		code, err := c.do(ctx, http.MethodPost, endpoint, body, &resp, tableCommit)
		if err != nil {
			return CommitTableResponse{}, err
		}
		meta, err := parseMetadata(code, resp.RawMetadata)
		if err != nil {
			return CommitTableResponse{}, err
		}
		return CommitTableResponse{MetadataLocation: resp.MetadataLoc, Metadata: meta}, nil
	})
	if errors.Is(err, resterr.ErrCommitStateUnknown) {
		c.log.Warn("commit state unknown", logger.F("table", id), logger.Err(err))
	}
	return resp, err
}

// UpdateTable commits against id without loading it first and returns the
// resulting table.
func (c *Catalog) UpdateTable(ctx context.Context, id table.Identifier, requirements []table.Requirement, updates []table.Update) (*Table, error) {
	resp, err := c.CommitTable(ctx, id, requirements, updates)
	if err != nil {
		return nil, err
	}
	return &Table{
		identifier:       id,
		metadataLocation: resp.MetadataLocation,
		metadata:         resp.Metadata,
		config:           iceberg.Properties{},
		cat:              c,
	}, nil
}

func (c *Catalog) newTable(id table.Identifier, resp loadTableResponse) (*Table, error) {
	meta, err := parseMetadata(http.StatusOK, resp.RawMetadata)
	if err != nil {
		return nil, err
	}
	config := resp.Config
	if config == nil {
		config = iceberg.Properties{}
	}
	return &Table{
		identifier:       id,
		metadataLocation: resp.MetadataLoc,
		metadata:         meta,
		config:           config,
		cat:              c,
	}, nil
}

func parseMetadata(code int, raw []byte) (table.Metadata, error) {
	meta, err := table.ParseMetadataBytes(raw)
	if err != nil {
		return nil, resterr.New(resterr.ErrRESTProtocol, code, "Received unexpected JSON Payload: %s, errors: %v", raw, err)
	}
	return meta, nil
}
