package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.winapps.thankasoldier/internal/content"
)

func TestSubmitGuestbook_Validation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"missing author", map[string]any{"message": "A long enough message"}, "Author and message are required"},
		{"missing message", map[string]any{"author": "Jane"}, "Author and message are required"},
		{"short message", map[string]any{"author": "Jane", "message": "short"}, "Message must be at least 10 characters long"},
		{"long message", map[string]any{"author": "Jane", "message": strings.Repeat("x", 1001)}, "Message must be less than 1000 characters"},
		{"long author", map[string]any{"author": strings.Repeat("a", 101), "message": "A long enough message"}, "Name must be less than 100 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := env.postJSON(t, "/api/guestbook", tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, body["error"])
		})
	}

	_, _, guestbook := env.store.Counts()
	assert.Zero(t, guestbook, "rejected submissions create no document")
}

func TestSubmitGuestbook_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/guestbook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	w, body := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request format", body["error"])
}

func TestSubmitGuestbook_CreatesUnapprovedEntry(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.postJSON(t, "/api/guestbook", map[string]any{
		"author": "Tomi", "message": "Thank you for your service.", "approved": true,
	})
	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Equal(t, true, body["success"])
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	entry, ok := env.store.GuestbookEntry(id)
	require.True(t, ok)
	assert.False(t, entry.Approved)
	assert.Equal(t, "Visitor", entry.Location)
	assert.Equal(t, testNow, entry.SubmittedAt)

	_, list := env.get(t, "/api/guestbook")
	assert.Empty(t, list["data"], "unapproved entries are hidden")

	require.NoError(t, env.store.Approve(id))
	_, list = env.get(t, "/api/guestbook")
	data := list["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Visitor", data[0].(map[string]any)["relationship"])
}

func TestSubmitTribute_ShortMessageThenValid(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.postJSON(t, "/api/tributes", map[string]any{"author": "Jane", "message": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Message must be at least 10 characters long", body["error"])
	_, tributes, _ := env.store.Counts()
	assert.Zero(t, tributes)

	w, body = env.postJSON(t, "/api/tributes", map[string]any{
		"author": "Jane", "message": "Forever in our hearts.", "relationship": "Sister", "memorialId": "m1",
	})
	require.Equal(t, http.StatusOK, w.Code, body)
	id := body["id"].(string)

	tribute, ok := env.store.Tribute(id)
	require.True(t, ok)
	assert.False(t, tribute.Approved)
	assert.Equal(t, "m1", tribute.MemorialID)

	_, detail := env.get(t, "/api/memorials/m1")
	assert.Empty(t, detail["data"].(map[string]any)["tributes"])

	require.NoError(t, env.store.Approve(id))
	_, detail = env.get(t, "/api/memorials/m1")
	data := detail["data"].(map[string]any)
	require.Len(t, data["tributes"], 1)
	assert.EqualValues(t, 1, data["tributeCount"])
}

func TestSubmitTribute_MissingRelationship(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.postJSON(t, "/api/tributes", map[string]any{"author": "Jane", "message": "Forever in our hearts."})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Author, message, and relationship are required", body["error"])
}

func TestSubmitTribute_StoreFailure(t *testing.T) {
	failing := &failingStore{err: &content.StoreError{Op: "create", Code: "mutationError", Status: 400, Err: errors.New("document rejected")}}
	env := newTestEnvWithStore(t, failing)

	w, body := env.postJSON(t, "/api/tributes", map[string]any{
		"author": "Jane", "message": "Forever in our hearts.", "relationship": "Sister",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to submit tribute", body["error"])
	assert.Equal(t, "mutationError", body["code"])
	assert.Contains(t, body["details"], "document rejected")
	assert.Equal(t, 1, failing.creates)
}

func TestSubmitGuestbook_UnknownStoreFailure(t *testing.T) {
	env := newTestEnvWithStore(t, &failingStore{err: context.DeadlineExceeded})

	w, body := env.postJSON(t, "/api/guestbook", map[string]any{"author": "T", "message": "Thank you all so much."})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to submit guestbook entry", body["error"])
	assert.Equal(t, "timeout", body["code"])
}

func validMemorialFields() map[string]string {
	return map[string]string{
		"name":      "Pte. Musa Ibrahim",
		"role":      "Rifleman",
		"unit":      "7th Division",
		"status":    "fallen",
		"deathDate": "2019-02-14",
		"biography": "Musa carried the radio for his platoon through three winters.",
	}
}

func TestSubmitMemorial_Validation(t *testing.T) {
	env := newTestEnv(t)

	with := func(k, v string) map[string]string {
		f := validMemorialFields()
		f[k] = v
		return f
	}

	cases := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"missing unit", with("unit", ""), "Name, role, unit, status, and biography are required"},
		{"short biography", with("biography", "   brief    "), "Biography must be at least 10 characters"},
		{"bad status", with("status", "retired"), "Status must be one of fallen, serving, or gallantry"},
		{"bad date", with("birthDate", "12/04/1988"), "Birth date must be in YYYY-MM-DD format"},
		{"long role", with("role", strings.Repeat("r", 101)), "Role must be less than 100 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := env.do(t, multipartRequest(t, "/api/memorials", tc.fields, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, body["error"])
		})
	}

	memorials, _, _ := env.store.Counts()
	assert.Equal(t, 2, memorials)
}

func TestSubmitMemorial_WithImage(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, multipartRequest(t, "/api/memorials", validMemorialFields(), &formFile{name: "musa.png", data: pngHeader}))
	require.Equal(t, http.StatusOK, w.Code, body)
	id := body["id"].(string)

	m, err := env.store.Memorial(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, m.Approved)
	assert.False(t, m.Featured)
	require.NotNil(t, m.Image)
	assert.True(t, strings.HasPrefix(m.Image.URL, "/blobs/images/"), m.Image.URL)
	assert.True(t, strings.HasSuffix(m.Image.AssetRef, "-png"), m.Image.AssetRef)
	assert.Equal(t, 1, env.blobs.Len())
}

func TestSubmitMemorial_ImageChecks(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, multipartRequest(t, "/api/memorials", validMemorialFields(), &formFile{name: "big.png", data: append(pngHeader, bytes.Repeat([]byte{0}, 2048)...)}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image size must be less than 1KB", body["error"])

	w, body = env.do(t, multipartRequest(t, "/api/memorials", validMemorialFields(), &formFile{name: "notes.png", data: []byte("just some text pretending")}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select a valid image file", body["error"])

	assert.Zero(t, env.blobs.Len())
	memorials, _, _ := env.store.Counts()
	assert.Equal(t, 2, memorials)
}

func TestSubmitMemorial_EmptyImageIsIgnored(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, multipartRequest(t, "/api/memorials", validMemorialFields(), &formFile{name: "empty.png"}))
	require.Equal(t, http.StatusOK, w.Code, body)

	m, err := env.store.Memorial(context.Background(), body["id"].(string))
	require.NoError(t, err)
	assert.Nil(t, m.Image)
}

func TestSubmitMemorial_UploadFailureSkipsCreate(t *testing.T) {
	failing := &failingStore{err: &content.StoreError{Op: "upload image", Code: "http_502", Status: 502, Err: errors.New("bad gateway")}}
	env := newTestEnvWithStore(t, failing)

	w, body := env.do(t, multipartRequest(t, "/api/memorials", validMemorialFields(), &formFile{name: "musa.png", data: pngHeader}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to submit memorial", body["error"])
	assert.Equal(t, "http_502", body["code"])
	assert.Zero(t, failing.creates)
}
