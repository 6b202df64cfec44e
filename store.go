package main

import (
	"context"
	"errors"
)

var (
	ErrEmptyField  = errors.New("title and content are required")
	ErrStoreClosed = errors.New("store is closed")
)

// Store holds the raw post primitives. It applies no business rules beyond
// the shape of the data: validation and author defaulting happen upstream.
//
// Listings are ordered newest first by created_at, ties broken by id.
// Search is a literal, case-sensitive substring match on title or content.
type Store interface {
	Insert(ctx context.Context, title, content, author string) (int64, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	GetPage(ctx context.Context, offset, limit int) ([]Post, error)
	SearchPage(ctx context.Context, keyword string, offset, limit int) ([]Post, error)
	Count(ctx context.Context) (int, error)
	SearchCount(ctx context.Context, keyword string) (int, error)
	Update(ctx context.Context, id int64, title, content, author string) error
	DeleteOne(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int, error)
	Close() error
}
