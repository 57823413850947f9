package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the local corpus database.
func Open(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("corpus dsn must be provided")
	}

	var (
		db  *sql.DB
		err error
	)

	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "mysql":
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the corpus tables are present.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS posts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				text TEXT NOT NULL DEFAULT '',
				embedding BLOB NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS comments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				post_id INTEGER NOT NULL,
				body TEXT NOT NULL DEFAULT '',
				embedding BLOB NOT NULL,
				FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS attachments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				post_id INTEGER NOT NULL,
				extracted_text TEXT NOT NULL DEFAULT '',
				embedding BLOB NOT NULL,
				FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id)`,
			`CREATE INDEX IF NOT EXISTS idx_attachments_post ON attachments(post_id)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS posts (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				title VARCHAR(512) NOT NULL,
				text MEDIUMTEXT NOT NULL,
				embedding MEDIUMBLOB NOT NULL,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS comments (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				post_id BIGINT UNSIGNED NOT NULL,
				body MEDIUMTEXT NOT NULL,
				embedding MEDIUMBLOB NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_comments_post (post_id),
				CONSTRAINT fk_comments_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS attachments (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				post_id BIGINT UNSIGNED NOT NULL,
				extracted_text MEDIUMTEXT NOT NULL,
				embedding MEDIUMBLOB NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_attachments_post (post_id),
				CONSTRAINT fk_attachments_post FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}

// InsertPost stores one post with its embedding and returns the new id.
func InsertPost(ctx context.Context, db *sql.DB, title, text string, embedding []float32) (int64, error) {
	blob, err := EncodeVector(embedding)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO posts (title, text, embedding) VALUES (?, ?, ?)`,
		title, text, blob,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return res.LastInsertId()
}

// InsertComment stores one comment with its embedding and returns the new id.
func InsertComment(ctx context.Context, db *sql.DB, postID int64, body string, embedding []float32) (int64, error) {
	blob, err := EncodeVector(embedding)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO comments (post_id, body, embedding) VALUES (?, ?, ?)`,
		postID, body, blob,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	return res.LastInsertId()
}

// InsertAttachment stores one attachment with its embedding and returns the new id.
func InsertAttachment(ctx context.Context, db *sql.DB, postID int64, extractedText string, embedding []float32) (int64, error) {
	blob, err := EncodeVector(embedding)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO attachments (post_id, extracted_text, embedding) VALUES (?, ?, ?)`,
		postID, extractedText, blob,
	)
	if err != nil {
		return 0, fmt.Errorf("insert attachment: %w", err)
	}
	return res.LastInsertId()
}
