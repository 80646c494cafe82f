package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"io.winapps.thankasoldier/internal/assets"
	"io.winapps.thankasoldier/internal/audio"
	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/content/memory"
	"io.winapps.thankasoldier/internal/middleware"
	"io.winapps.thankasoldier/internal/queries"
	"io.winapps.thankasoldier/internal/views"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 11, 11, 11, 0, 0, 0, time.UTC)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testEnv struct {
	router  *gin.Engine
	store   *memory.Store
	blobs   *blob.Memory
	queries *queries.Service
	audio   *audio.MemorySettingsStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, nil)
}

// newTestEnvWithStore routes submissions to override when it is set; reads
// always go to the memory store.
func newTestEnvWithStore(t *testing.T, override content.Store) *testEnv {
	t.Helper()
	logger := zap.NewNop().Sugar()

	blobs := blob.NewMemory("/blobs")
	store := memory.NewStore(blobs)
	require.NoError(t, store.Seed(
		content.Memorial{ID: "m1", Name: "Cpl. James Okafor", Role: "Medic", Unit: "2nd Battalion",
			Status: content.StatusFallen, BirthDate: "1988-04-12", DeathDate: "2014-09-03",
			Biography: "Never left a comrade behind.", Approved: true, Featured: true},
		content.Memorial{ID: "m2", Name: "Sgt. Amina Bello", Status: content.StatusServing, Approved: true},
		content.MediaAsset{ID: "a1", Title: "Anthem", MediaType: content.MediaAudio, Category: content.CategoryBackgroundMusic,
			OtherFile: &content.FileRef{AssetRef: "file-anthem-mp3"}},
		content.MediaAsset{ID: "i1", Title: "Parade", MediaType: content.MediaImage, Category: content.CategoryEvents,
			ImageFile: &content.ImageRef{AssetRef: "image-parade-800x600-jpg"}},
	))

	svc := queries.New(store, logger)
	urls := assets.NewBuilder("proj", "production")
	presenter := views.NewPresenter(urls)
	settings := audio.NewMemorySettingsStore()

	var writes content.Store = store
	if override != nil {
		writes = override
	}

	submissions := NewSubmissionHandler(writes, svc, logger, 1024)
	submissions.now = func() time.Time { return testNow }
	contentHandler := NewContentHandler(svc, presenter, logger)
	audioHandler := NewAudioHandler(svc, urls, settings, "/audio/memorial-music.mp3", logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.POST("/api/guestbook", submissions.SubmitGuestbook)
	r.POST("/api/tributes", submissions.SubmitTribute)
	r.POST("/api/memorials", submissions.SubmitMemorial)
	r.GET("/api/memorials", contentHandler.ListMemorials)
	r.GET("/api/memorials/featured", contentHandler.GetFeaturedMemorials)
	r.GET("/api/memorials/anniversaries", contentHandler.ListAnniversaries)
	r.GET("/api/memorials/:id", contentHandler.GetMemorial)
	r.GET("/api/guestbook", contentHandler.ListGuestbook)
	r.GET("/api/timeline", contentHandler.GetTimeline)
	r.GET("/api/media", contentHandler.ListMedia)
	r.GET("/api/media/wall", contentHandler.GetMediaWall)
	r.GET("/api/navigation", contentHandler.GetNavigation)
	r.GET("/api/audio/source", audioHandler.GetSource)
	r.GET("/api/audio/settings", audioHandler.GetSettings)
	r.PUT("/api/audio/settings", audioHandler.UpdateSettings)

	return &testEnv{router: r, store: store, blobs: blobs, queries: svc, audio: settings}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func (e *testEnv) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", file.name)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(file.data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// failingStore rejects every write with a CMS style error.
type failingStore struct {
	content.Store
	err     error
	creates int
}

func (f *failingStore) CreateMemorial(context.Context, *content.Memorial) (string, error) {
	f.creates++
	return "", f.err
}

func (f *failingStore) CreateTribute(context.Context, *content.Tribute) (string, error) {
	f.creates++
	return "", f.err
}

func (f *failingStore) CreateGuestbookEntry(context.Context, *content.GuestbookEntry) (string, error) {
	f.creates++
	return "", f.err
}

func (f *failingStore) UploadImage(context.Context, content.ImageUpload) (*content.ImageRef, error) {
	return nil, f.err
}
