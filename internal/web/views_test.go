package web

import (
	"bytes"
	"testing"
	"testing/fstest"
	"time"

	"photoalbum/internal/models"
	"photoalbum/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseData() map[string]interface{} {
	return map[string]interface{}{
		"CSRF":     "tok-123",
		"Identity": (*models.Identity)(nil),
		"Flashes":  session.Flashes{},
	}
}

func TestViews_LoadEmbedded(t *testing.T) {
	v := NewViews()
	require.NoError(t, v.Load())
	for _, page := range []string{"login", "register", "albums", "album", "error", "404"} {
		_, ok := v.pages[page]
		assert.True(t, ok, page)
	}
	_, ok := v.pages[DefaultLayout]
	assert.False(t, ok, "layout is not a page")
}

func TestViews_RenderLoginPrefillsUsername(t *testing.T) {
	v := NewViews()
	data := baseData()
	data["Username"] = "alice"
	data["Flashes"] = session.Flashes{Error: []string{"You must log in first."}}

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf, "login", data))
	html := buf.String()
	assert.Contains(t, html, `name="_csrf" value="tok-123"`)
	assert.Contains(t, html, `value="alice"`)
	assert.Contains(t, html, "You must log in first.")
	assert.Contains(t, html, "<title>Log in</title>")
}

func TestViews_RenderAlbumsShowsOwnerControls(t *testing.T) {
	v := NewViews()
	data := baseData()
	data["Identity"] = &models.Identity{ID: 7, Username: "alice"}
	data["Albums"] = []models.Album{
		{ID: 1, Title: "Mine", UserID: 7, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Photos: []models.Photo{{URL: "/uploads/a.png"}}},
		{ID: 2, Title: "Theirs", UserID: 8, User: &models.User{Username: "bob"}},
	}

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf, "albums", data))
	html := buf.String()
	assert.Contains(t, html, `data-delete="1"`)
	assert.NotContains(t, html, `data-delete="2"`)
	assert.Contains(t, html, "/uploads/a.png")
	assert.Contains(t, html, "by bob")
	assert.Contains(t, html, "May 1, 2024")
}

func TestViews_EscapesUserContent(t *testing.T) {
	v := NewViews()
	data := baseData()
	data["Albums"] = []models.Album{{ID: 1, Title: "<script>alert(1)</script>"}}

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf, "albums", data))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestViews_UnknownPage(t *testing.T) {
	v := NewViews()
	err := v.Render(&bytes.Buffer{}, "missing", baseData())
	assert.Error(t, err)
}

func TestViews_CustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layout.html": {Data: []byte(`{{define "layout"}}[{{template "content" .}}]{{end}}`)},
		"templates/hello.html":  {Data: []byte(`{{define "content"}}hi {{.Name}}{{end}}`)},
		"templates/plain.html":  {Data: []byte(`{{define "bare"}}bare {{.Name}}{{end}}{{define "content"}}x{{end}}`)},
	}
	v := NewViewsFS(fsys)
	require.NoError(t, v.Load())

	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf, "hello", map[string]string{"Name": "ann"}))
	assert.Equal(t, "[hi ann]", buf.String())

	buf.Reset()
	require.NoError(t, v.Render(&buf, "plain", map[string]string{"Name": "ann"}, "bare"))
	assert.Equal(t, "bare ann", buf.String())
}
