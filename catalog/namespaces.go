package catalog

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"

	"github.com/xixipi-lining/iceberg-rest-client/ident"
	"github.com/xixipi-lining/iceberg-rest-client/resterr"
)

var (
	namespaceNotFound = resterr.Overrides{http.StatusNotFound: resterr.ErrNoSuchNamespace}
	namespaceCreate = resterr.Overrides{
		http.StatusNotFound: resterr.ErrNoSuchNamespace,
		http.StatusConflict: resterr.ErrNamespaceAlreadyExists,
	}
	namespaceDrop = resterr.Overrides{
		http.StatusNotFound: resterr.ErrNoSuchNamespace,
		http.StatusConflict: resterr.ErrNamespaceNotEmpty,
	}
)

func (c *Catalog) namespaceEndpoint(ns table.Identifier, rest ...string) (string, error) {
	path, err := ident.NamespacePath(ns)
	if err != nil {
		return "", err
	}
	escaped, err := ident.Escape("namespace", path)
	if err != nil {
		return "", err
	}
	return c.endpoint(append([]string{"namespaces", escaped}, rest...)...), nil
}

// ListNamespaces lists the children of parent, or the top level namespaces
// when parent is empty. Returned identifiers always include the parent.
func (c *Catalog) ListNamespaces(ctx context.Context, parent table.Identifier) ([]table.Identifier, error) {
	endpoint := c.endpoint("namespaces")
	if len(parent) > 0 {
		path, err := ident.NamespacePath(parent)
		if err != nil {
			return nil, err
		}
		endpoint += "?" + url.Values{"parent": {path}}.Encode()
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) ([]table.Identifier, error) {
		var resp listNamespacesResponse
		if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, namespaceNotFound); err != nil {
			return nil, err
		}

		out := make([]table.Identifier, 0, len(resp.Namespaces))
		for _, ns := range resp.Namespaces {
			if len(parent) > 0 && !hasPrefix(ns, parent) {
				ns = append(slices.Clone(parent), ns...)
			}
			out = append(out, ns)
		}
		return out, nil
	})
}

func hasPrefix(ns, parent table.Identifier) bool {
	return len(ns) > len(parent) && slices.Equal(ns[:len(parent)], parent)
}

func (c *Catalog) CreateNamespace(ctx context.Context, ns table.Identifier, props iceberg.Properties) error {
	if _, err := ident.NamespacePath(ns); err != nil {
		return err
	}
	body := namespaceBody{Namespace: ns, Properties: props}

	return reauth(ctx, c.session, c.log, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodPost, c.endpoint("namespaces"), body, nil, namespaceCreate)
		return err
	})
}

func (c *Catalog) LoadNamespaceProperties(ctx context.Context, ns table.Identifier) (iceberg.Properties, error) {
	endpoint, err := c.namespaceEndpoint(ns)
	if err != nil {
		return nil, err
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (iceberg.Properties, error) {
		var resp namespaceBody
		if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, namespaceNotFound); err != nil {
			return nil, err
		}
		if resp.Properties == nil {
			resp.Properties = iceberg.Properties{}
		}
		return resp.Properties, nil
	})
}

// DropNamespace fails with resterr.ErrNamespaceNotEmpty while tables remain.
func (c *Catalog) DropNamespace(ctx context.Context, ns table.Identifier) error {
	endpoint, err := c.namespaceEndpoint(ns)
	if err != nil {
		return err
	}

	return reauth(ctx, c.session, c.log, func(ctx context.Context) error {
		_, err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, namespaceDrop)
		return err
	})
}

func (c *Catalog) UpdateNamespaceProperties(ctx context.Context, ns table.Identifier, removals []string, updates iceberg.Properties) (PropertiesUpdateSummary, error) {
	endpoint, err := c.namespaceEndpoint(ns, "properties")
	if err != nil {
		return PropertiesUpdateSummary{}, err
	}
	if removals == nil {
		removals = []string{}
	}
	if updates == nil {
		updates = iceberg.Properties{}
	}
	body := updatePropertiesRequest{Removals: removals, Updates: updates}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (PropertiesUpdateSummary, error) {
		var summary PropertiesUpdateSummary
		_, err := c.do(ctx, http.MethodPost, endpoint, body, &summary, namespaceNotFound)
		return summary, err
	})
}

// CheckNamespaceExists reports whether ns exists without loading it.
func (c *Catalog) CheckNamespaceExists(ctx context.Context, ns table.Identifier) (bool, error) {
	endpoint, err := c.namespaceEndpoint(ns)
	if err != nil {
		return false, err
	}

	return withReauth(ctx, c.session, c.log, func(ctx context.Context) (bool, error) {
		return c.exists(ctx, endpoint)
	})
}

func (c *Catalog) exists(ctx context.Context, endpoint string) (bool, error) {
	code, err := c.do(ctx, http.MethodHead, endpoint, nil, nil, nil)
	switch {
	case code == http.StatusNotFound:
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}
