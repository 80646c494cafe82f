package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/content/postgres/migrations"
)

var memorialCols = []string{"id", "name", "role", "unit", "status", "birth_date", "death_date",
	"biography", "image_ref", "image_url", "approved", "featured", "updated_at"}

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db, blob.NewMemory("https://blobs.test")), mock
}

func TestStore_FeaturedMemorials(t *testing.T) {
	s, mock := newStoreWithMock(t)
	updated := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM memorials WHERE featured ORDER BY updated_at DESC LIMIT \$1`).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows(memorialCols).
			AddRow("m1", "Cpl. A", "Medic", "2nd Bn", "fallen", "1990-01-02", "", "bio", "image-a-10x10-jpg", "", true, true, updated))

	got, err := s.FeaturedMemorials(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, content.StatusFallen, got[0].Status)
	assert.Equal(t, "1990-01-02", got[0].BirthDate)
	assert.Equal(t, "image-a-10x10-jpg", got[0].Image.AssetRef)
	assert.Equal(t, updated, got[0].UpdatedAt)
}

func TestStore_MemorialsApprovalFilter(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM memorials ORDER BY name, id`).WillReturnRows(sqlmock.NewRows(memorialCols))
	mock.ExpectQuery(`FROM memorials WHERE approved ORDER BY name, id`).WillReturnRows(sqlmock.NewRows(memorialCols))

	all, err := s.Memorials(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, all)

	_, err = s.Memorials(context.Background(), true)
	require.NoError(t, err)
}

func TestStore_MemorialNotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM memorials WHERE id = \$1`).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(memorialCols))

	m, err := s.Memorial(context.Background(), "missing")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestStore_QueryFailureIsStoreError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM guestbook_entries WHERE approved`).WillReturnError(errors.New("connection reset"))

	_, err := s.ApprovedGuestbookEntries(context.Background())
	require.Error(t, err)
	assert.Equal(t, "database", content.ErrorCode(err))
}

func TestStore_ApprovedTributes(t *testing.T) {
	s, mock := newStoreWithMock(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT memorial_id FROM tributes WHERE approved AND memorial_id IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"memorial_id"}).AddRow("m1").AddRow("m1").AddRow("m2"))
	mock.ExpectQuery(`FROM tributes WHERE approved AND memorial_id = \$1 ORDER BY submitted_at DESC`).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "relationship", "message", "memorial_id",
			"approved", "submitted_at", "image_ref", "image_url"}).
			AddRow("t1", "Jane", "Friend", "Rest easy, brother.", "m1", true, at, "", ""))

	ids, err := s.ApprovedTributeMemorialIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m1", "m2"}, ids)

	tributes, err := s.ApprovedTributes(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, tributes, 1)
	assert.Nil(t, tributes[0].Image)
	assert.Equal(t, at, tributes[0].SubmittedAt)
}

func TestStore_TimelineEvents(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`FROM timeline_events e LEFT JOIN memorials m`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date", "description", "event_type",
			"memorial_id", "memorial_name", "image_ref", "image_url"}).
			AddRow("e1", "Service", "2016-09-03", []byte(`"Annual service."`), "memorial", "m1", "Cpl. A", "", "").
			AddRow("e2", "Founding", "2015-05-01",
				[]byte(`[{"_type":"block","children":[{"_type":"span","text":"Opened."}]}]`), "milestone", "", "", "", ""))

	events, err := s.TimelineEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Annual service.", events[0].Description.PlainText())
	assert.Equal(t, "Cpl. A", events[0].MemorialName)
	assert.Equal(t, "Opened.", events[1].Description.PlainText())
	assert.Equal(t, content.EventMilestone, events[1].EventType)
}

func TestStore_MediaFilters(t *testing.T) {
	s, mock := newStoreWithMock(t)
	cols := []string{"id", "title", "description", "media_type", "image_ref", "image_url", "file_ref", "file_url",
		"category", "memorial_id", "memorial_name", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE a.category = $1 AND a.media_type = $2 ORDER BY a.created_at DESC`)).
		WithArgs("events", "image").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a1", "Parade", "", "image", "", "https://cdn/x.jpg", "", "", "events", "", "", time.Now()))
	mock.ExpectQuery(`FROM media a LEFT JOIN memorials m ON m.id = a.memorial_id ORDER BY a.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a2", "Song", "", "audio", "", "", "file-xyz-mp3", "", "background-music", "", "", time.Now()))

	images, err := s.Media(context.Background(), content.MediaFilter{Category: content.CategoryEvents, MediaType: content.MediaImage})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "https://cdn/x.jpg", images[0].ImageFile.URL)
	assert.Nil(t, images[0].OtherFile)

	all, err := s.Media(context.Background(), content.MediaFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "file-xyz-mp3", all[0].OtherFile.AssetRef)
	assert.Nil(t, all[0].ImageFile)
}

func TestStore_CreateGuestbookEntry(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO guestbook_entries`).
		WithArgs(sqlmock.AnyArg(), "Jane", "Visitor", "Thank you for your service.", false,
			sqlmock.AnyArg(), "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.CreateGuestbookEntry(context.Background(), &content.GuestbookEntry{
		Author: "Jane", Location: "Visitor", Message: "Thank you for your service.",
	})
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestStore_CreateRejectsInvalidWithoutQuery(t *testing.T) {
	s, _ := newStoreWithMock(t)

	_, err := s.CreateTribute(context.Background(), &content.Tribute{Author: "Jane", Relationship: "Friend", Message: "short"})
	assert.ErrorIs(t, err, content.ErrInvalidDocument)
}

func TestStore_CreateTributeUnknownMemorial(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO tributes`).
		WithArgs(sqlmock.AnyArg(), "Jane", "Friend", "Rest easy, brother.", "nope", false,
			sqlmock.AnyArg(), "", "").
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	_, err := s.CreateTribute(context.Background(), &content.Tribute{
		Author: "Jane", Relationship: "Friend", Message: "Rest easy, brother.", MemorialID: "nope",
	})
	assert.Equal(t, "invalidReference", content.ErrorCode(err))
}

func TestStore_CreateTributeWithoutMemorial(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO tributes`).
		WithArgs(sqlmock.AnyArg(), "Jane", "Friend", "Rest easy, brother.", nil, false,
			sqlmock.AnyArg(), "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.CreateTribute(context.Background(), &content.Tribute{
		Author: "Jane", Relationship: "Friend", Message: "Rest easy, brother.",
	})
	require.NoError(t, err)
}

func TestStore_CreateMemorial(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`INSERT INTO memorials`).
		WithArgs(sqlmock.AnyArg(), "Cpl. A", "Medic", "2nd Bn", "fallen", "1990-01-02", nil,
			"A long enough biography.", "image-abc-jpg", "https://blobs.test/images/abc.jpg", false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.CreateMemorial(context.Background(), &content.Memorial{
		Name: "Cpl. A", Role: "Medic", Unit: "2nd Bn", Status: content.StatusFallen, BirthDate: "1990-01-02",
		Biography: "A long enough biography.",
		Image:     &content.ImageRef{AssetRef: "image-abc-jpg", URL: "https://blobs.test/images/abc.jpg"},
	})
	require.NoError(t, err)
}

func TestStore_CreateMediaRejectsBothFiles(t *testing.T) {
	s, _ := newStoreWithMock(t)

	_, err := s.CreateMedia(context.Background(), &content.MediaAsset{
		Title: "x", MediaType: content.MediaAudio, Category: content.CategoryBackgroundMusic,
		ImageFile: &content.ImageRef{URL: "a"}, OtherFile: &content.FileRef{URL: "b"},
	})
	assert.ErrorIs(t, err, content.ErrInvalidDocument)
}

func TestStore_UploadImage(t *testing.T) {
	s, _ := newStoreWithMock(t)

	ref, err := s.UploadImage(context.Background(), content.ImageUpload{
		Filename: "a.png", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n"),
	})
	require.NoError(t, err)
	assert.Contains(t, ref.URL, "https://blobs.test/images/")
}

func TestStore_UploadImageWithoutBlobs(t *testing.T) {
	s := NewStore(nil, nil)

	_, err := s.UploadImage(context.Background(), content.ImageUpload{Data: []byte("x")})
	assert.Equal(t, "noBlobStorage", content.ErrorCode(err))
}

func TestMigrate_UsesEmbeddedMigrations(t *testing.T) {
	var gotDir string
	orig := gooseUpContext
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseUpContext = orig })

	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, ".", gotDir)

	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "00001_content.sql")
}

func TestMigrate_WrapsError(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	t.Cleanup(func() { gooseUpContext = orig })

	assert.ErrorContains(t, Migrate(context.Background(), nil), "failed to run migrations: boom")
}
