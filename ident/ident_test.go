package ident

import (
	"encoding/json"
	"testing"

	"github.com/apache/iceberg-go/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablePathRoundTrip(t *testing.T) {
	cases := []table.Identifier{
		{"db", "events"},
		{"accounting", "tax", "2024", "receipts"},
		{"a b", "c/d", "e%f"},
	}
	for _, id := range cases {
		p, err := TablePath(id)
		require.NoError(t, err)

		got := append(SplitNamespace(p.Namespace), p.Table)
		assert.Equal(t, id, got)
	}
}

func TestTablePathRejectsShortIdentifiers(t *testing.T) {
	for _, id := range []table.Identifier{nil, {}, {"only"}} {
		_, err := TablePath(id)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)

		_, err = TableJSON(id)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	}
}

func TestNamespacePath(t *testing.T) {
	p, err := NamespacePath(table.Identifier{"accounting", "tax"})
	require.NoError(t, err)
	assert.Equal(t, "accounting\x1ftax", p)

	p, err = NamespacePath(table.Identifier{"single"})
	require.NoError(t, err)
	assert.Equal(t, "single", p)

	_, err = NamespacePath(table.Identifier{})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestTableJSON(t *testing.T) {
	id := table.Identifier{"accounting", "tax", "paid"}
	j, err := TableJSON(id)
	require.NoError(t, err)

	b, err := json.Marshal(j)
	require.NoError(t, err)
	assert.JSONEq(t, `{"namespace":["accounting","tax"],"name":"paid"}`, string(b))
	assert.Equal(t, id, j.Ident())

	// the returned namespace must not alias the caller's slice
	j.Namespace[0] = "changed"
	assert.Equal(t, "accounting", id[0])
}

func TestEscape(t *testing.T) {
	got, err := Escape("namespace", "accounting\x1ftax")
	require.NoError(t, err)
	assert.Equal(t, "accounting%1Ftax", got)

	got, err = Escape("table", "my table")
	require.NoError(t, err)
	assert.Equal(t, "my%20table", got)
}
