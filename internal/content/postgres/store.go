// Package postgres is the self-hosted content backend. Documents live in
// PostgreSQL, image bytes in a blob.Storage.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"io.winapps.thankasoldier/internal/blob"
	"io.winapps.thankasoldier/internal/content"
	"io.winapps.thankasoldier/internal/content/postgres/migrations"
)

// DBTX is the subset of database/sql used by the store. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements content.Store on PostgreSQL.
type Store struct {
	db    DBTX
	blobs blob.Storage
	now   func() time.Time
}

// NewStore wraps an open database handle.
func NewStore(db DBTX, blobs blob.Storage) *Store {
	return &Store{db: db, blobs: blobs, now: time.Now}
}

// OpenDB exposes a pgx pool through database/sql.
func OpenDB(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

const memorialColumns = `id, name, role, unit, status,
	COALESCE(to_char(birth_date, 'YYYY-MM-DD'), ''), COALESCE(to_char(death_date, 'YYYY-MM-DD'), ''),
	biography, image_ref, image_url, approved, featured, updated_at`

const tributeColumns = `id, author, relationship, message, COALESCE(memorial_id, ''), approved, submitted_at, image_ref, image_url`

const guestbookColumns = `id, author, location, message, approved, submitted_at, image_ref, image_url`

type scanner interface {
	Scan(dest ...any) error
}

func imageRef(ref, url string) *content.ImageRef {
	if ref == "" && url == "" {
		return nil
	}
	return &content.ImageRef{AssetRef: ref, URL: url}
}

func imageColumns(ref *content.ImageRef) (string, string) {
	if ref == nil {
		return "", ""
	}
	return ref.AssetRef, ref.URL
}

func scanMemorial(row scanner) (content.Memorial, error) {
	var (
		m              content.Memorial
		status         string
		imgRef, imgURL string
	)
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Unit, &status, &m.BirthDate, &m.DeathDate,
		&m.Biography, &imgRef, &imgURL, &m.Approved, &m.Featured, &m.UpdatedAt)
	if err != nil {
		return m, err
	}
	m.Status = content.Status(status)
	m.Image = imageRef(imgRef, imgURL)
	return m, nil
}

func scanTribute(row scanner) (content.Tribute, error) {
	var (
		t              content.Tribute
		imgRef, imgURL string
	)
	err := row.Scan(&t.ID, &t.Author, &t.Relationship, &t.Message, &t.MemorialID, &t.Approved,
		&t.SubmittedAt, &imgRef, &imgURL)
	if err != nil {
		return t, err
	}
	t.Image = imageRef(imgRef, imgURL)
	return t, nil
}

func scanGuestbookEntry(row scanner) (content.GuestbookEntry, error) {
	var (
		e              content.GuestbookEntry
		imgRef, imgURL string
	)
	err := row.Scan(&e.ID, &e.Author, &e.Location, &e.Message, &e.Approved, &e.SubmittedAt, &imgRef, &imgURL)
	if err != nil {
		return e, err
	}
	e.Image = imageRef(imgRef, imgURL)
	return e, nil
}

// collect runs query and scans every row with scan.
func collect[T any](ctx context.Context, db DBTX, op string, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, storeError(op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return out, nil
}

// FeaturedMemorials implements content.Store.
func (s *Store) FeaturedMemorials(ctx context.Context, limit int) ([]content.Memorial, error) {
	if limit <= 0 {
		limit = 6
	}
	return collect(ctx, s.db, "featured memorials", scanMemorial,
		`SELECT `+memorialColumns+` FROM memorials WHERE featured ORDER BY updated_at DESC LIMIT $1`, limit)
}

// Memorials implements content.Store.
func (s *Store) Memorials(ctx context.Context, approvedOnly bool) ([]content.Memorial, error) {
	query := `SELECT ` + memorialColumns + ` FROM memorials`
	if approvedOnly {
		query += ` WHERE approved`
	}
	query += ` ORDER BY name, id`
	return collect(ctx, s.db, "memorials", scanMemorial, query)
}

// Memorial implements content.Store.
func (s *Store) Memorial(ctx context.Context, id string) (*content.Memorial, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memorialColumns+` FROM memorials WHERE id = $1`, id)
	m, err := scanMemorial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, storeError("memorial", err)
	}
	return &m, nil
}

// ApprovedTributeMemorialIDs implements content.Store.
func (s *Store) ApprovedTributeMemorialIDs(ctx context.Context) ([]string, error) {
	return collect(ctx, s.db, "tribute references", func(row scanner) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	}, `SELECT memorial_id FROM tributes WHERE approved AND memorial_id IS NOT NULL`)
}

// ApprovedTributes implements content.Store.
func (s *Store) ApprovedTributes(ctx context.Context, memorialID string) ([]content.Tribute, error) {
	return collect(ctx, s.db, "tributes", scanTribute,
		`SELECT `+tributeColumns+` FROM tributes WHERE approved AND memorial_id = $1 ORDER BY submitted_at DESC`,
		memorialID)
}

// TimelineEvents implements content.Store.
func (s *Store) TimelineEvents(ctx context.Context) ([]content.TimelineEvent, error) {
	return collect(ctx, s.db, "timeline events", func(row scanner) (content.TimelineEvent, error) {
		var (
			e              content.TimelineEvent
			eventType      string
			description    []byte
			imgRef, imgURL string
		)
		err := row.Scan(&e.ID, &e.Title, &e.Date, &description, &eventType, &e.MemorialID,
			&e.MemorialName, &imgRef, &imgURL)
		if err != nil {
			return e, err
		}
		if len(description) > 0 {
			if err := json.Unmarshal(description, &e.Description); err != nil {
				return e, fmt.Errorf("event %s description: %w", e.ID, err)
			}
		}
		e.EventType = content.EventType(eventType)
		e.Image = imageRef(imgRef, imgURL)
		return e, nil
	}, `SELECT e.id, e.title, to_char(e.date, 'YYYY-MM-DD'), e.description, e.event_type,
		COALESCE(e.memorial_id, ''), COALESCE(m.name, ''), e.image_ref, e.image_url
		FROM timeline_events e LEFT JOIN memorials m ON m.id = e.memorial_id
		ORDER BY e.date DESC`)
}

// Media implements content.Store.
func (s *Store) Media(ctx context.Context, filter content.MediaFilter) ([]content.MediaAsset, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conditions = append(conditions, fmt.Sprintf("a.category = $%d", len(args)))
	}
	if filter.MediaType != "" {
		args = append(args, string(filter.MediaType))
		conditions = append(conditions, fmt.Sprintf("a.media_type = $%d", len(args)))
	}

	query := `SELECT a.id, a.title, a.description, a.media_type, a.image_ref, a.image_url, a.file_ref, a.file_url,
		a.category, COALESCE(a.memorial_id, ''), COALESCE(m.name, ''), a.created_at
		FROM media a LEFT JOIN memorials m ON m.id = a.memorial_id`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY a.created_at DESC`

	return collect(ctx, s.db, "media", func(row scanner) (content.MediaAsset, error) {
		var (
			a                          content.MediaAsset
			mediaType, category        string
			imgRef, imgURL, fRef, fURL string
		)
		err := row.Scan(&a.ID, &a.Title, &a.Description, &mediaType, &imgRef, &imgURL, &fRef, &fURL,
			&category, &a.MemorialID, &a.MemorialName, &a.CreatedAt)
		if err != nil {
			return a, err
		}
		a.MediaType = content.MediaType(mediaType)
		a.Category = content.Category(category)
		if a.IsImage() {
			a.ImageFile = imageRef(imgRef, imgURL)
		} else if fRef != "" || fURL != "" {
			a.OtherFile = &content.FileRef{AssetRef: fRef, URL: fURL}
		}
		return a, nil
	}, query, args...)
}

// ApprovedGuestbookEntries implements content.Store.
func (s *Store) ApprovedGuestbookEntries(ctx context.Context) ([]content.GuestbookEntry, error) {
	return collect(ctx, s.db, "guestbook", scanGuestbookEntry,
		`SELECT `+guestbookColumns+` FROM guestbook_entries WHERE approved ORDER BY submitted_at DESC`)
}

// CreateMemorial implements content.Store.
func (s *Store) CreateMemorial(ctx context.Context, m *content.Memorial) (string, error) {
	if err := content.Validate(m); err != nil {
		return "", err
	}

	id := uuid.New().String()
	imgRef, imgURL := imageColumns(m.Image)
	_, err := s.db.ExecContext(ctx, `INSERT INTO memorials
		(id, name, role, unit, status, birth_date, death_date, biography, image_ref, image_url, approved, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, m.Name, m.Role, m.Unit, string(m.Status), nullString(m.BirthDate), nullString(m.DeathDate),
		m.Biography, imgRef, imgURL, m.Approved, m.Featured)
	if err != nil {
		return "", storeError("create memorial", err)
	}
	return id, nil
}

// CreateTribute implements content.Store.
func (s *Store) CreateTribute(ctx context.Context, t *content.Tribute) (string, error) {
	if err := content.Validate(t); err != nil {
		return "", err
	}

	id := uuid.New().String()
	imgRef, imgURL := imageColumns(t.Image)
	_, err := s.db.ExecContext(ctx, `INSERT INTO tributes
		(id, author, relationship, message, memorial_id, approved, submitted_at, image_ref, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, t.Author, t.Relationship, t.Message, nullString(t.MemorialID), t.Approved,
		s.submittedAt(t.SubmittedAt), imgRef, imgURL)
	if err != nil {
		return "", storeError("create tribute", err)
	}
	return id, nil
}

// CreateGuestbookEntry implements content.Store.
func (s *Store) CreateGuestbookEntry(ctx context.Context, e *content.GuestbookEntry) (string, error) {
	if err := content.Validate(e); err != nil {
		return "", err
	}

	id := uuid.New().String()
	imgRef, imgURL := imageColumns(e.Image)
	_, err := s.db.ExecContext(ctx, `INSERT INTO guestbook_entries
		(id, author, location, message, approved, submitted_at, image_ref, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.Author, e.Location, e.Message, e.Approved, s.submittedAt(e.SubmittedAt), imgRef, imgURL)
	if err != nil {
		return "", storeError("create guestbook entry", err)
	}
	return id, nil
}

// CreateTimelineEvent inserts an administrator-authored event.
func (s *Store) CreateTimelineEvent(ctx context.Context, e *content.TimelineEvent) (string, error) {
	if err := content.Validate(e); err != nil {
		return "", err
	}

	description, err := json.Marshal(e.Description)
	if err != nil {
		return "", fmt.Errorf("failed to encode description: %w", err)
	}

	id := uuid.New().String()
	imgRef, imgURL := imageColumns(e.Image)
	_, err = s.db.ExecContext(ctx, `INSERT INTO timeline_events
		(id, title, date, description, event_type, memorial_id, image_ref, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, e.Title, e.Date, description, string(e.EventType), nullString(e.MemorialID), imgRef, imgURL)
	if err != nil {
		return "", storeError("create timeline event", err)
	}
	return id, nil
}

// CreateMedia inserts an administrator-authored media asset.
func (s *Store) CreateMedia(ctx context.Context, a *content.MediaAsset) (string, error) {
	if err := content.Validate(*a); err != nil {
		return "", err
	}

	imgRef, imgURL := imageColumns(a.ImageFile)
	var fRef, fURL string
	if a.OtherFile != nil {
		fRef, fURL = a.OtherFile.AssetRef, a.OtherFile.URL
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `INSERT INTO media
		(id, title, description, media_type, image_ref, image_url, file_ref, file_url, category, memorial_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, a.Title, a.Description, string(a.MediaType), imgRef, imgURL, fRef, fURL,
		string(a.Category), nullString(a.MemorialID))
	if err != nil {
		return "", storeError("create media", err)
	}
	return id, nil
}

// UploadImage implements content.Store.
func (s *Store) UploadImage(ctx context.Context, upload content.ImageUpload) (*content.ImageRef, error) {
	if s.blobs == nil {
		return nil, &content.StoreError{Op: "upload", Code: "noBlobStorage", Err: errors.New("no blob storage configured")}
	}
	return blob.PutImage(ctx, s.blobs, upload)
}

func (s *Store) submittedAt(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t.UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// storeError maps driver failures onto content.StoreError codes.
func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch pgErr.Code {
		case "23503":
			code = "invalidReference"
		case "23514", "22001", "22007", "22008":
			code = "invalidDocument"
		}
		return &content.StoreError{Op: op, Code: code, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &content.StoreError{Op: op, Code: "timeout", Err: err}
	}
	return &content.StoreError{Op: op, Code: "database", Err: err}
}
