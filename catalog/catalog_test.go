package catalog

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/apache/iceberg-go"
	iceio "github.com/apache/iceberg-go/io"
	"github.com/apache/iceberg-go/table"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xixipi-lining/iceberg-rest-client/catalogtest"
	"github.com/xixipi-lining/iceberg-rest-client/ident"
	"github.com/xixipi-lining/iceberg-rest-client/resterr"
	"github.com/xixipi-lining/iceberg-rest-client/session"
)

const (
	namespaceRoute = "/namespaces/:namespace"
	tablesRoute    = "/namespaces/:namespace/tables"
	tableRoute     = "/namespaces/:namespace/tables/:table"
)

func setupCatalog(t *testing.T, cfg catalogtest.Config, props iceberg.Properties, opts ...Option) (*catalogtest.Server, *Catalog) {
	t.Helper()

	srv := catalogtest.New(cfg)
	t.Cleanup(srv.Close)

	all := iceberg.Properties{KeyURI: srv.URL}
	for k, v := range props {
		all[k] = v
	}

	cat, err := NewCatalog(context.Background(), "test", all, opts...)
	require.NoError(t, err)
	return srv, cat
}

func testSchema() *iceberg.Schema {
	return iceberg.NewSchema(0,
		iceberg.NestedField{ID: 1, Name: "id", Type: iceberg.PrimitiveTypes.Int64, Required: true},
		iceberg.NestedField{ID: 2, Name: "data", Type: iceberg.PrimitiveTypes.String},
	)
}

func TestMergeProperties(t *testing.T) {
	merged := MergeProperties(
		iceberg.Properties{"a": "1", "b": "2"},
		iceberg.Properties{"b": "3", "c": "4"},
		iceberg.Properties{"a": "5"},
	)
	assert.Equal(t, iceberg.Properties{"a": "5", "b": "3", "c": "4"}, merged)
}

func TestNewCatalogConfigBootstrap(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{
		Defaults:  map[string]string{"a": "1", "b": "2"},
		Overrides: map[string]string{"a": "5"},
	}, iceberg.Properties{"b": "3", "c": "4", KeyWarehouse: "s3://bucket/wh"})

	props := cat.Properties()
	assert.Equal(t, "5", props["a"])
	assert.Equal(t, "3", props["b"])
	assert.Equal(t, "4", props["c"])
	assert.Equal(t, srv.URL, cat.URI())
	assert.Equal(t, "test", cat.Name())

	configs := srv.RequestsTo(http.MethodGet, "/config")
	require.Len(t, configs, 1)
	assert.Equal(t, "/v1/config", configs[0].Path)
	assert.Equal(t, "warehouse=s3%3A%2F%2Fbucket%2Fwh", configs[0].RawQuery)
}

func TestNewCatalogPrefixFromServer(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{
		Prefix:    "wh",
		Overrides: map[string]string{KeyPrefix: "wh"},
	}, nil)

	require.NoError(t, cat.CreateNamespace(context.Background(), table.Identifier{"db"}, nil))
	assert.Equal(t, "/v1/wh/namespaces", srv.LastRequest().Path)
}

func TestNewCatalogMissingURI(t *testing.T) {
	_, err := NewCatalog(context.Background(), "test", iceberg.Properties{})
	assert.ErrorIs(t, err, ErrMissingURI)
}

func TestNewCatalogConfigError(t *testing.T) {
	srv := catalogtest.New(catalogtest.Config{Credentials: map[string]string{"client": "secret"}})
	defer srv.Close()

	_, err := NewCatalog(context.Background(), "test", iceberg.Properties{KeyURI: srv.URL})
	assert.ErrorIs(t, err, resterr.ErrUnauthorized)
}

func TestDefaultHeaders(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, iceberg.Properties{
		"token":           "static-token",
		"header.X-Tenant": "acme",
	})

	_, err := cat.ListNamespaces(context.Background(), nil)
	require.NoError(t, err)

	h := srv.LastRequest().Header
	assert.Equal(t, "Bearer static-token", h.Get("Authorization"))
	assert.Equal(t, session.ClientVersion, h.Get("X-Client-Version"))
	assert.Equal(t, session.UserAgent, h.Get("User-Agent"))
	assert.Equal(t, "vended-credentials", h.Get("X-Iceberg-Access-Delegation"))
	assert.Equal(t, "acme", h.Get("X-Tenant"))
}

func TestNamespaceOperations(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{RelativeNamespaces: true}, nil)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"accounting"}, iceberg.Properties{"owner": "finance"}))
		require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"accounting", "tax"}, nil))

		err := cat.CreateNamespace(ctx, table.Identifier{"accounting"}, nil)
		assert.ErrorIs(t, err, resterr.ErrNamespaceAlreadyExists)
	})

	t.Run("List", func(t *testing.T) {
		top, err := cat.ListNamespaces(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []table.Identifier{{"accounting"}}, top)

		children, err := cat.ListNamespaces(ctx, table.Identifier{"accounting"})
		require.NoError(t, err)
		assert.Equal(t, []table.Identifier{{"accounting", "tax"}}, children)

		_, err = cat.ListNamespaces(ctx, table.Identifier{"missing"})
		assert.ErrorIs(t, err, resterr.ErrNoSuchNamespace)
	})

	t.Run("Load", func(t *testing.T) {
		props, err := cat.LoadNamespaceProperties(ctx, table.Identifier{"accounting"})
		require.NoError(t, err)
		assert.Equal(t, iceberg.Properties{"owner": "finance"}, props)

		_, err = cat.LoadNamespaceProperties(ctx, table.Identifier{"accounting", "tax"})
		require.NoError(t, err)
		assert.Equal(t, "/v1/namespaces/accounting\x1ftax", srv.LastRequest().Path)

		_, err = cat.LoadNamespaceProperties(ctx, table.Identifier{"missing"})
		assert.ErrorIs(t, err, resterr.ErrNoSuchNamespace)
	})

	t.Run("UpdateProperties", func(t *testing.T) {
		summary, err := cat.UpdateNamespaceProperties(ctx, table.Identifier{"accounting"},
			[]string{"owner", "absent"}, iceberg.Properties{"region": "eu"})
		require.NoError(t, err)
		assert.Equal(t, []string{"owner"}, summary.Removed)
		assert.Equal(t, []string{"region"}, summary.Updated)
		assert.Equal(t, []string{"absent"}, summary.Missing)

		_, err = cat.UpdateNamespaceProperties(ctx, table.Identifier{"accounting"},
			[]string{"region"}, iceberg.Properties{"region": "us"})
		assert.ErrorIs(t, err, resterr.ErrRESTProtocol)
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := cat.CheckNamespaceExists(ctx, table.Identifier{"accounting"})
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = cat.CheckNamespaceExists(ctx, table.Identifier{"missing"})
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Drop", func(t *testing.T) {
		_, err := cat.CreateTable(ctx, table.Identifier{"accounting", "tax", "paid"}, testSchema())
		require.NoError(t, err)

		err = cat.DropNamespace(ctx, table.Identifier{"accounting", "tax"})
		assert.ErrorIs(t, err, resterr.ErrNamespaceNotEmpty)

		require.NoError(t, cat.DropTable(ctx, table.Identifier{"accounting", "tax", "paid"}))
		require.NoError(t, cat.DropNamespace(ctx, table.Identifier{"accounting", "tax"}))

		err = cat.DropNamespace(ctx, table.Identifier{"accounting", "tax"})
		assert.ErrorIs(t, err, resterr.ErrNoSuchNamespace)
	})

	t.Run("InvalidIdentifier", func(t *testing.T) {
		err := cat.CreateNamespace(ctx, table.Identifier{}, nil)
		assert.ErrorIs(t, err, ident.ErrInvalidIdentifier)

		_, err = cat.LoadNamespaceProperties(ctx, nil)
		assert.ErrorIs(t, err, ident.ErrInvalidIdentifier)
	})
}

func TestTableOperations(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{
		TableConfig: map[string]string{"s3.access-key-id": "vended"},
	}, nil)
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))
	id := table.Identifier{"db", "events"}

	t.Run("Create", func(t *testing.T) {
		tbl, err := cat.CreateTable(ctx, id, testSchema(),
			WithLocation("s3://bucket/db/events"),
			WithProperties(iceberg.Properties{"write.format.default": "parquet"}))
		require.NoError(t, err)

		assert.Equal(t, id, tbl.Identifier())
		assert.Equal(t, "s3://bucket/db/events", tbl.Metadata().Location())
		assert.True(t, strings.HasPrefix(tbl.MetadataLocation(), "s3://bucket/db/events/metadata/"))
		assert.Equal(t, "parquet", tbl.Properties()["write.format.default"])
		assert.Equal(t, "vended", tbl.Config()["s3.access-key-id"])
		assert.Equal(t, 2, tbl.Metadata().CurrentSchema().NumFields())

		_, err = cat.CreateTable(ctx, id, testSchema())
		assert.ErrorIs(t, err, resterr.ErrTableAlreadyExists)

		_, err = cat.CreateTable(ctx, table.Identifier{"missing", "events"}, testSchema())
		assert.ErrorIs(t, err, resterr.ErrNoSuchNamespace)
	})

	t.Run("List", func(t *testing.T) {
		tables, err := cat.ListTables(ctx, table.Identifier{"db"})
		require.NoError(t, err)
		assert.Equal(t, []table.Identifier{id}, tables)

		_, err = cat.ListTables(ctx, table.Identifier{"missing"})
		assert.ErrorIs(t, err, resterr.ErrNoSuchNamespace)
	})

	t.Run("Load", func(t *testing.T) {
		tbl, err := cat.LoadTable(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, tbl.Identifier())

		_, err = cat.LoadTable(ctx, table.Identifier{"db", "missing"})
		assert.ErrorIs(t, err, resterr.ErrNoSuchTable)

		_, err = cat.LoadTable(ctx, table.Identifier{"events"})
		assert.ErrorIs(t, err, ident.ErrInvalidIdentifier)
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := cat.CheckTableExists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = cat.CheckTableExists(ctx, table.Identifier{"db", "missing"})
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Register", func(t *testing.T) {
		tbl, err := cat.RegisterTable(ctx, table.Identifier{"db", "imported"}, "s3://bucket/imported/metadata/v1.metadata.json")
		require.NoError(t, err)
		assert.Equal(t, "s3://bucket/imported/metadata/v1.metadata.json", tbl.MetadataLocation())

		_, err = cat.RegisterTable(ctx, table.Identifier{"db", "imported"}, "s3://bucket/other.json")
		assert.ErrorIs(t, err, resterr.ErrTableAlreadyExists)
	})

	t.Run("Rename", func(t *testing.T) {
		require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"archive"}, nil))
		dest := table.Identifier{"archive", "imported"}

		tbl, err := cat.RenameTable(ctx, table.Identifier{"db", "imported"}, dest)
		require.NoError(t, err)
		assert.Equal(t, dest, tbl.Identifier())

		_, err = cat.RenameTable(ctx, table.Identifier{"db", "imported"}, dest)
		assert.ErrorIs(t, err, resterr.ErrNoSuchTable)
	})

	t.Run("Drop", func(t *testing.T) {
		require.NoError(t, cat.DropTable(ctx, table.Identifier{"archive", "imported"}))
		assert.Equal(t, "purgeRequested=false", srv.LastRequest().RawQuery)

		require.NoError(t, cat.PurgeTable(ctx, id))
		assert.Equal(t, "purgeRequested=true", srv.LastRequest().RawQuery)

		err := cat.DropTable(ctx, id)
		assert.ErrorIs(t, err, resterr.ErrNoSuchTable)
	})
}

func TestRenameIgnoresResponseBody(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))
	_, err := cat.CreateTable(ctx, table.Identifier{"db", "a"}, testSchema())
	require.NoError(t, err)
	_, err = cat.CreateTable(ctx, table.Identifier{"db", "b"}, testSchema())
	require.NoError(t, err)

	srv.Fail(http.MethodPost, "/tables/rename", http.StatusOK, `{"identifier":{"namespace":["db"],"name":"a"}}`)

	tbl, err := cat.RenameTable(ctx, table.Identifier{"db", "a"}, table.Identifier{"db", "b"})
	require.NoError(t, err)
	assert.Equal(t, table.Identifier{"db", "b"}, tbl.Identifier())
	assert.Equal(t, "/v1/namespaces/db/tables/b", srv.LastRequest().Path)
}

func TestCommit(t *testing.T) {
	_, cat := setupCatalog(t, catalogtest.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))
	tbl, err := cat.CreateTable(ctx, table.Identifier{"db", "events"}, testSchema())
	require.NoError(t, err)

	t.Run("TableCommit", func(t *testing.T) {
		next, err := tbl.Commit(ctx,
			[]table.Requirement{table.AssertTableUUID(tbl.Metadata().TableUUID())},
			[]table.Update{table.NewSetPropertiesUpdate(iceberg.Properties{"owner": "etl"})})
		require.NoError(t, err)

		assert.Equal(t, "etl", next.Properties()["owner"])
		assert.NotEqual(t, tbl.MetadataLocation(), next.MetadataLocation())
		assert.Empty(t, tbl.Properties()["owner"])
	})

	t.Run("RequirementFailed", func(t *testing.T) {
		_, err := cat.CommitTable(ctx, tbl.Identifier(),
			[]table.Requirement{table.AssertCurrentSchemaID(7)}, nil)
		assert.ErrorIs(t, err, resterr.ErrCommitFailed)
	})

	t.Run("UpdateTable", func(t *testing.T) {
		updated, err := cat.UpdateTable(ctx, tbl.Identifier(), nil,
			[]table.Update{table.NewSetPropertiesUpdate(iceberg.Properties{"tier": "gold"})})
		require.NoError(t, err)
		assert.Equal(t, "gold", updated.Properties()["tier"])

		refreshed, err := tbl.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, updated.MetadataLocation(), refreshed.MetadataLocation())
	})

	t.Run("MissingTable", func(t *testing.T) {
		_, err := cat.CommitTable(ctx, table.Identifier{"db", "missing"}, nil, nil)
		assert.ErrorIs(t, err, resterr.ErrNoSuchTable)
	})
}

func TestErrorMapping(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, nil)
	ctx := context.Background()
	id := table.Identifier{"db", "events"}
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))
	_, err := cat.CreateTable(ctx, id, testSchema())
	require.NoError(t, err)

	commit := func() error {
		_, err := cat.CommitTable(ctx, id, nil, nil)
		return err
	}
	load := func() error {
		_, err := cat.LoadTable(ctx, id)
		return err
	}

	tests := []struct {
		name   string
		method string
		route  string
		status int
		call   func() error
		kind   error
	}{
		{"commit conflict", http.MethodPost, tableRoute, http.StatusConflict, commit, resterr.ErrCommitFailed},
		{"commit internal error", http.MethodPost, tableRoute, http.StatusInternalServerError, commit, resterr.ErrCommitStateUnknown},
		{"commit bad gateway", http.MethodPost, tableRoute, http.StatusBadGateway, commit, resterr.ErrCommitStateUnknown},
		{"commit gateway timeout", http.MethodPost, tableRoute, http.StatusGatewayTimeout, commit, resterr.ErrCommitStateUnknown},
		{"load bad gateway", http.MethodGet, tableRoute, http.StatusBadGateway, load, resterr.ErrServerError},
		{"load forbidden", http.MethodGet, tableRoute, http.StatusForbidden, load, resterr.ErrForbidden},
		{"load unavailable", http.MethodGet, tableRoute, http.StatusServiceUnavailable, load, resterr.ErrServiceUnavailable},
		{"load not implemented", http.MethodGet, tableRoute, http.StatusNotImplemented, load, resterr.ErrNotImplemented},
		{"load unauthorized", http.MethodGet, tableRoute, http.StatusUnauthorized, load, resterr.ErrUnauthorized},
		{"create namespace not found", http.MethodPost, "/namespaces", http.StatusNotFound, func() error {
			return cat.CreateNamespace(ctx, table.Identifier{"missing", "child"}, nil)
		}, resterr.ErrNoSuchNamespace},
		{"create namespace conflict", http.MethodPost, "/namespaces", http.StatusConflict, func() error {
			return cat.CreateNamespace(ctx, table.Identifier{"other"}, nil)
		}, resterr.ErrNamespaceAlreadyExists},
		{"create conflict", http.MethodPost, tablesRoute, http.StatusConflict, func() error {
			_, err := cat.CreateTable(ctx, table.Identifier{"db", "other"}, testSchema())
			return err
		}, resterr.ErrTableAlreadyExists},
		{"list tables not found", http.MethodGet, tablesRoute, http.StatusNotFound, func() error {
			_, err := cat.ListTables(ctx, table.Identifier{"db"})
			return err
		}, resterr.ErrNoSuchNamespace},
		{"exists server error", http.MethodHead, tableRoute, http.StatusInternalServerError, func() error {
			_, err := cat.CheckTableExists(ctx, id)
			return err
		}, resterr.ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv.FailJSON(tt.method, tt.route, tt.status, "SomeException", "injected")
			err := tt.call()
			require.ErrorIs(t, err, tt.kind)

			var restErr *resterr.Error
			require.ErrorAs(t, err, &restErr)
			assert.Equal(t, tt.status, restErr.Code)
		})
	}
}

func TestMalformedErrorBody(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, nil)
	ctx := context.Background()

	srv.Fail(http.MethodGet, tableRoute, http.StatusNotFound, "<html>gateway</html>")
	_, err := cat.LoadTable(ctx, table.Identifier{"db", "events"})
	require.ErrorIs(t, err, resterr.ErrNoSuchTable)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "<html>gateway</html>")
}

func TestMalformedSuccessBody(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, nil)

	srv.Fail(http.MethodGet, namespaceRoute, http.StatusOK, `{"namespace": 12}`)
	_, err := cat.LoadNamespaceProperties(context.Background(), table.Identifier{"db"})
	assert.ErrorIs(t, err, resterr.ErrRESTProtocol)
}

func TestReauthentication(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{
		Credentials: map[string]string{"client": "secret"},
	}, iceberg.Properties{"credential": "client:secret"})
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))

	issued := srv.IssuedTokens()
	srv.ExpireTokens()

	props, err := cat.LoadNamespaceProperties(ctx, table.Identifier{"db"})
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Equal(t, issued+1, srv.IssuedTokens())
	assert.Len(t, srv.RequestsTo(http.MethodGet, namespaceRoute), 2)
}

func TestReauthenticationGivesUp(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))

	for range 2 {
		srv.FailJSON(http.MethodGet, namespaceRoute, resterr.StatusAuthorizationExpired, "AuthenticationTimeoutException", "expired")
	}

	_, err := cat.LoadNamespaceProperties(ctx, table.Identifier{"db"})
	require.ErrorIs(t, err, resterr.ErrAuthorizationExpired)
	assert.Len(t, srv.RequestsTo(http.MethodGet, namespaceRoute), 2)
}

func TestRenameRetriesOnlyRename(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, nil)
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))
	_, err := cat.CreateTable(ctx, table.Identifier{"db", "a"}, testSchema())
	require.NoError(t, err)

	srv.FailJSON(http.MethodPost, "/tables/rename", resterr.StatusAuthorizationExpired, "AuthenticationTimeoutException", "expired")

	tbl, err := cat.RenameTable(ctx, table.Identifier{"db", "a"}, table.Identifier{"db", "b"})
	require.NoError(t, err)
	assert.Equal(t, table.Identifier{"db", "b"}, tbl.Identifier())
	assert.Len(t, srv.RequestsTo(http.MethodPost, "/tables/rename"), 2)
	assert.Len(t, srv.RequestsTo(http.MethodGet, tableRoute), 1)
}

func TestTableFileIO(t *testing.T) {
	var (
		gotProps    iceberg.Properties
		gotLocation string
		loads       int
	)
	loader := func(_ context.Context, props iceberg.Properties, location string) (iceio.IO, error) {
		loads++
		gotProps, gotLocation = props, location
		return iceio.LocalFS{}, nil
	}

	_, cat := setupCatalog(t, catalogtest.Config{
		TableConfig: map[string]string{"s3.region": "eu-west-1", "shared": "config"},
	}, nil, WithFileIO(loader))
	ctx := context.Background()
	require.NoError(t, cat.CreateNamespace(ctx, table.Identifier{"db"}, nil))

	tbl, err := cat.CreateTable(ctx, table.Identifier{"db", "events"}, testSchema(),
		WithLocation("file:///tmp/warehouse/db/events"),
		WithProperties(iceberg.Properties{"shared": "metadata", "owner": "etl"}))
	require.NoError(t, err)
	assert.Zero(t, loads)

	fs, err := tbl.FS(ctx)
	require.NoError(t, err)
	assert.NotNil(t, fs)
	_, err = tbl.FS(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, tbl.MetadataLocation(), gotLocation)
	assert.True(t, strings.HasPrefix(gotLocation, "file:///tmp/warehouse/db/events/metadata/"))
	assert.Equal(t, "config", gotProps["shared"])
	assert.Equal(t, "etl", gotProps["owner"])
	assert.Equal(t, "eu-west-1", gotProps["s3.region"])
}

func TestSignedRequests(t *testing.T) {
	srv, cat := setupCatalog(t, catalogtest.Config{}, iceberg.Properties{
		"token":                  "static-token",
		session.KeySigV4Enabled:  "true",
		session.KeySigningRegion: "us-east-1",
	}, WithSessionOptions(session.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	)))

	require.NoError(t, cat.CreateNamespace(context.Background(), table.Identifier{"db"}, nil))

	h := srv.LastRequest().Header
	assert.True(t, strings.HasPrefix(h.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/"))
	assert.Equal(t, "Bearer static-token", h.Get("Original-Authorization"))
	assert.NotEmpty(t, h.Get("X-Amz-Date"))
}
