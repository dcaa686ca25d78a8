package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver.

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

const (
	driverName        = "postgres"
	connMaxLifetime   = 5 * time.Minute
	defaultMaxOpenCon = 4
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// postRow is one row of the posts table.
type postRow struct {
	ID          string          `db:"id"`
	Author      sql.NullString  `db:"author"`
	CreatedUTC  sql.NullString  `db:"created_utc"`
	Score       sql.NullFloat64 `db:"score"`
	NumComments sql.NullFloat64 `db:"num_comments"`
	Subreddit   sql.NullString  `db:"subreddit"`
	Title       sql.NullString  `db:"title"`
}

func (r postRow) raw() lifecycle.RawPost {
	post := lifecycle.RawPost{
		ID:          r.ID,
		Author:      r.Author.String,
		CreatedUTC:  lifecycle.Timestamp(r.CreatedUTC.String),
		SourceGroup: r.Subreddit.String,
		Title:       r.Title.String,
	}

	if r.Score.Valid {
		post.Score = &r.Score.Float64
	}

	if r.NumComments.Valid {
		post.NumComments = &r.NumComments.Float64
	}

	return post
}

// PostgresSource reads posts of one meme from a Postgres table with the
// columns id, author, created_utc, score, num_comments, subreddit, title and
// meme.
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

// OpenPostgres connects to dsn and returns a source reading from table.
func OpenPostgres(ctx context.Context, dsn, table string, maxConnections int) (*PostgresSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if maxConnections <= 0 {
		maxConnections = defaultMaxOpenCon
	}

	db.SetMaxOpenConns(maxConnections)
	db.SetMaxIdleConns(max(1, maxConnections/2))
	db.SetConnMaxLifetime(connMaxLifetime)

	return NewPostgresSource(db, table)
}

// NewPostgresSource wraps an open connection.
func NewPostgresSource(db *sqlx.DB, table string) (*PostgresSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	return &PostgresSource{db: db, table: table}, nil
}

// Query returns the statement used by Fetch.
func (s *PostgresSource) Query() string {
	return `SELECT id, author, created_utc::text AS created_utc, score, num_comments, subreddit, title
	FROM ` + s.table + `
	WHERE meme = $1
	ORDER BY id`
}

// Fetch implements Source.
func (s *PostgresSource) Fetch(ctx context.Context, meme string) ([]lifecycle.RawPost, error) {
	var rows []postRow

	err := s.db.SelectContext(ctx, &rows, s.Query(), meme)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}

	posts := make([]lifecycle.RawPost, len(rows))
	for i, r := range rows {
		posts[i] = r.raw()
	}

	return posts, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
