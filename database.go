package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One writer, one file. This also keeps ":memory:" databases from being
	// split across pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initDB(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		author TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	_, err := db.Exec(schema)
	if err != nil {
		return err
	}

	if err := migrateDB(db); err != nil {
		return err
	}

	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// migrateDB brings boards created before posts carried an author or an
// update time up to the current layout.
func migrateDB(db *sql.DB) error {
	ok, err := hasColumn(db, "posts", "author")
	if err != nil {
		return err
	}

	if !ok {
		_, err = db.Exec(`ALTER TABLE posts ADD COLUMN author TEXT NOT NULL DEFAULT '` + anonymousAuthor + `'`)
		if err != nil {
			return err
		}
	}

	ok, err = hasColumn(db, "posts", "updated_at")
	if err != nil {
		return err
	}

	if !ok {
		// ALTER TABLE cannot add a column defaulting to CURRENT_TIMESTAMP,
		// so backfill from created_at instead. Inserts set it explicitly.
		_, err = db.Exec(`ALTER TABLE posts ADD COLUMN updated_at TIMESTAMP`)
		if err != nil {
			return err
		}

		_, err = db.Exec(`UPDATE posts SET updated_at = created_at WHERE updated_at IS NULL`)
		if err != nil {
			return err
		}
	}

	return nil
}

var samplePosts = []Post{
	{Title: "Welcome", Content: "This is the free board. Say hello!", Author: "admin"},
	{Title: "How to post", Content: "Press Post, fill in a subject and some content, then save.", Author: "admin"},
	{Title: "Searching", Content: "The search box matches subjects and content, case-sensitively.", Author: anonymousAuthor},
}

func seedDB(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	stmt := "INSERT INTO posts (title, content, author) VALUES (?, ?, ?)"
	for _, post := range samplePosts {
		_, err := db.Exec(stmt, post.Title, post.Content, post.Author)
		if err != nil {
			return 0, err
		}
	}

	return len(samplePosts), nil
}
