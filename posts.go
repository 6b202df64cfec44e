package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const postColumns = "id, title, content, author, created_at, updated_at"

type sqliteStore struct {
	db *sql.DB
}

func newSQLiteStore(db *sql.DB) *sqliteStore {
	return &sqliteStore{db: db}
}

// withTx runs fn inside a transaction. The transaction is committed only if
// fn succeeds and is rolled back on every other path, panics included.
func (s *sqliteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Author, &post.CreatedAt, &post.UpdatedAt)
	return post, err
}

func (s *sqliteStore) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// Both timestamps come from the same CURRENT_TIMESTAMP evaluation, so a new
// post always has created_at == updated_at.
func (s *sqliteStore) Insert(ctx context.Context, title, content, author string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO posts (title, content, author, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, title, content, author)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	return id, nil
}

func (s *sqliteStore) GetByID(ctx context.Context, id int64) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE id = ?`, id)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}

	return &post, nil
}

func (s *sqliteStore) GetPage(ctx context.Context, offset, limit int) ([]Post, error) {
	posts, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// instr keeps the match literal and case-sensitive; LIKE would treat % and _
// as wildcards and fold ASCII case.
func (s *sqliteStore) SearchPage(ctx context.Context, keyword string, offset, limit int) ([]Post, error) {
	posts, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE instr(title, ?) > 0 OR instr(content, ?) > 0
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, keyword, keyword, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("searching posts for %q: %w", keyword, err)
	}
	return posts, nil
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return count, nil
}

func (s *sqliteStore) SearchCount(ctx context.Context, keyword string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM posts
		WHERE instr(title, ?) > 0 OR instr(content, ?) > 0`, keyword, keyword).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting posts matching %q: %w", keyword, err)
	}
	return count, nil
}

// Update on an id that does not exist affects no rows and is not an error.
func (s *sqliteStore) Update(ctx context.Context, id int64, title, content, author string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE posts
			SET title = ?, content = ?, author = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`, title, content, author, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("updating post %d: %w", id, err)
	}
	return nil
}

func (s *sqliteStore) DeleteOne(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	return nil
}

func (s *sqliteStore) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	var removed int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id IN ("+placeholders+")", args...)
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("deleting %d posts: %w", len(ids), err)
	}
	return int(removed), nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
