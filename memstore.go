package main

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// memoryStore keeps posts in process memory. It follows the same ordering,
// search and id rules as the SQLite store and is lost on exit.
type memoryStore struct {
	mu     sync.RWMutex
	posts  map[int64]*Post
	lastID int64
	closed bool
	now    func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		posts: make(map[int64]*Post),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (s *memoryStore) Insert(ctx context.Context, title, content, author string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	s.lastID++
	now := s.now()
	s.posts[s.lastID] = &Post{
		ID:        s.lastID,
		Title:     title,
		Content:   content,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.lastID, nil
}

func (s *memoryStore) GetByID(ctx context.Context, id int64) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	p := *post
	return &p, nil
}

// sorted returns copies of the posts accepted by keep, newest first.
func (s *memoryStore) sorted(keep func(*Post) bool) []Post {
	var posts []Post
	for _, post := range s.posts {
		if keep(post) {
			posts = append(posts, *post)
		}
	}

	slices.SortFunc(posts, func(a, b Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return posts
}

// window treats a negative offset as 0, as SQLite does.
func window(posts []Post, offset, limit int) []Post {
	offset = max(offset, 0)
	if offset >= len(posts) || limit <= 0 {
		return nil
	}
	end := offset + min(limit, len(posts)-offset)
	return posts[offset:end]
}

func matches(keyword string) func(*Post) bool {
	return func(p *Post) bool {
		return strings.Contains(p.Title, keyword) || strings.Contains(p.Content, keyword)
	}
}

func everyPost(*Post) bool { return true }

func (s *memoryStore) GetPage(ctx context.Context, offset, limit int) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return window(s.sorted(everyPost), offset, limit), nil
}

func (s *memoryStore) SearchPage(ctx context.Context, keyword string, offset, limit int) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return window(s.sorted(matches(keyword)), offset, limit), nil
}

func (s *memoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.posts), nil
}

func (s *memoryStore) SearchCount(ctx context.Context, keyword string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	keep := matches(keyword)
	count := 0
	for _, post := range s.posts {
		if keep(post) {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) Update(ctx context.Context, id int64, title, content, author string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	post, ok := s.posts[id]
	if !ok {
		return nil
	}
	post.Title = title
	post.Content = content
	post.Author = author
	post.UpdatedAt = s.now()
	return nil
}

func (s *memoryStore) DeleteOne(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	delete(s.posts, id)
	return nil
}

func (s *memoryStore) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	removed := 0
	for _, id := range ids {
		if _, ok := s.posts[id]; ok {
			delete(s.posts, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.posts = make(map[int64]*Post)
	return nil
}
