package upload

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field, filename, mime string
	body                  []byte
}

func buildForm(t *testing.T, parts ...part) *multipart.Form {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "X"))
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.mime)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func TestDecide(t *testing.T) {
	assert.NoError(t, Decide("image/jpeg", 10))
	assert.NoError(t, Decide("image/jpg", 10))
	assert.NoError(t, Decide("image/png", MaxSize))
	assert.ErrorIs(t, Decide("application/pdf", 10), ErrUnsupportedType)
	assert.ErrorIs(t, Decide("image/gif", 10), ErrUnsupportedType)
	assert.ErrorIs(t, Decide("image/png", MaxSize+1), ErrTooLarge)
}

func TestPick(t *testing.T) {
	fh, err := Pick(buildForm(t))
	require.NoError(t, err)
	assert.Nil(t, fh)

	fh, err = Pick(buildForm(t, part{FieldName, "a.png", "image/png", []byte("png")}))
	require.NoError(t, err)
	require.NotNil(t, fh)
	assert.Equal(t, "a.png", fh.Filename)

	_, err = Pick(buildForm(t, part{"other", "a.png", "image/png", []byte("png")}))
	assert.ErrorIs(t, err, ErrUnexpectedFile)

	_, err = Pick(buildForm(t,
		part{FieldName, "a.png", "image/png", []byte("1")},
		part{FieldName, "b.png", "image/png", []byte("2")},
	))
	assert.ErrorIs(t, err, ErrUnexpectedFile)
}

func TestStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	form := buildForm(t, part{FieldName, "photo.jpg", "image/jpeg", []byte("jpeg-bytes")})
	saved, err := store.Save(form.File[FieldName][0])
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^/uploads/productImage-\d+-\d+\.jpg$`), saved.Ref)
	data, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Remove(saved.Ref))
	_, err = os.Stat(saved.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SaveRejectsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	form := buildForm(t, part{FieldName, "doc.pdf", "application/pdf", []byte("%PDF")})
	_, err = store.Save(form.File[FieldName][0])
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_SaveRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	big := []byte(strings.Repeat("x", int(MaxSize)+1))
	form := buildForm(t, part{FieldName, "big.png", "image/png", big})
	_, err = store.Save(form.File[FieldName][0])
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_PathFor(t *testing.T) {
	store := &Store{Dir: "/srv/public/uploads"}

	p, ok := store.PathFor("/uploads/a.png")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("/srv/public/uploads", "a.png"), p)

	for _, ref := range []string{"https://placehold.co/x.png", "/uploads/", "/uploads/../etc/passwd", "/uploads/.."} {
		_, ok := store.PathFor(ref)
		assert.False(t, ok, ref)
	}
	assert.NoError(t, store.Remove("https://placehold.co/x.png"))
}
