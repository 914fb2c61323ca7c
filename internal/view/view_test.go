package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_AllPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{Index, Login, ProductList, ProductAdd, ProductEdit} {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, name, Page{Title: "T-" + name, ProductID: 7}, nil), name)
		assert.Contains(t, buf.String(), "<title>T-"+name+"</title>")
	}
}

func TestRenderer_LoginError(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, Login, Page{Title: "Login", Error: "<b>nope</b>"}, nil))
	assert.Contains(t, buf.String(), "&lt;b&gt;nope&lt;/b&gt;")
}

func TestRenderer_EditCarriesID(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, ProductEdit, Page{Title: "Edit", ProductID: 42}, nil))
	assert.Contains(t, buf.String(), `data-id="42"`)
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope.html", Page{}, nil))
}
