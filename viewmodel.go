package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	msgValidation = "Please enter title and content"
	msgAdded      = "Post Added"
	msgUpdated    = "Post Updated"
	msgDeleted    = "Post Deleted"
)

// Listener receives what the view model publishes. PostsChanged is always
// followed immediately by the matching PagingChanged.
type Listener interface {
	PostsChanged(posts []Post)
	PagingChanged(current, total int)
	Info(message string)
	Failure(message string)
}

// PostViewModel owns the list state of the board: which page is shown, which
// keyword filters it, and the totals from the last successful fetch. Storage
// errors stop here and are reported to listeners as failure messages.
//
// It is not safe for concurrent use; callers finish one call before making
// the next.
type PostViewModel struct {
	store     Store
	pager     *pager
	log       zerolog.Logger
	listeners []Listener

	currentPage int
	keyword     string
	totalCount  int
	totalPages  int
}

func NewPostViewModel(store Store, perPage int, log zerolog.Logger) *PostViewModel {
	return &PostViewModel{
		store:       store,
		pager:       newPager(store, perPage),
		log:         log.With().Str("component", "viewmodel").Logger(),
		currentPage: 1,
		totalPages:  1,
	}
}

func (vm *PostViewModel) Subscribe(l Listener) {
	vm.listeners = append(vm.listeners, l)
}

func (vm *PostViewModel) CurrentPage() int { return vm.currentPage }
func (vm *PostViewModel) TotalPages() int  { return vm.totalPages }
func (vm *PostViewModel) TotalCount() int  { return vm.totalCount }
func (vm *PostViewModel) Keyword() string  { return vm.keyword }
func (vm *PostViewModel) PageSize() int    { return vm.pager.perPage }

func (vm *PostViewModel) info(msg string) {
	for _, l := range vm.listeners {
		l.Info(msg)
	}
}

func (vm *PostViewModel) fail(action string, err error) {
	vm.log.Error().Err(err).Str("action", action).Msg("storage operation failed")
	msg := fmt.Sprintf("Could not %s: %v", action, err)
	for _, l := range vm.listeners {
		l.Failure(msg)
	}
}

func (vm *PostViewModel) publish(page Page) {
	for _, l := range vm.listeners {
		l.PostsChanged(page.Posts)
		l.PagingChanged(page.Number, page.TotalPages)
	}
}

// load fetches page for keyword and commits it as the new state. On failure
// the previous state is kept and nothing is published.
func (vm *PostViewModel) load(ctx context.Context, page int, keyword string) bool {
	p, err := vm.pager.Fetch(ctx, page, keyword)
	if err != nil {
		vm.fail("load posts", err)
		return false
	}

	// Rows may have disappeared since the totals were last read.
	if p.Number > p.TotalPages {
		p, err = vm.pager.Fetch(ctx, p.TotalPages, keyword)
		if err != nil {
			vm.fail("load posts", err)
			return false
		}
	}

	vm.currentPage = p.Number
	vm.keyword = keyword
	vm.totalCount = p.TotalCount
	vm.totalPages = p.TotalPages

	vm.log.Debug().
		Int("page", p.Number).
		Int("total_pages", p.TotalPages).
		Int("total_count", p.TotalCount).
		Str("keyword", keyword).
		Msg("page loaded")

	vm.publish(p)
	return true
}

// Fetch reloads the current page with the current keyword.
func (vm *PostViewModel) Fetch(ctx context.Context) bool {
	return vm.load(ctx, vm.currentPage, vm.keyword)
}

// GoToPage ignores pages outside [1, TotalPages].
func (vm *PostViewModel) GoToPage(ctx context.Context, page int) {
	if page < 1 || page > vm.totalPages {
		return
	}
	vm.load(ctx, page, vm.keyword)
}

func (vm *PostViewModel) GoPrev(ctx context.Context, step int) {
	if step < 1 || vm.currentPage <= 1 {
		return
	}
	vm.load(ctx, vm.currentPage-min(step, vm.currentPage-1), vm.keyword)
}

func (vm *PostViewModel) GoNext(ctx context.Context, step int) {
	if step < 1 || vm.currentPage >= vm.totalPages {
		return
	}
	vm.load(ctx, vm.currentPage+min(step, vm.totalPages-vm.currentPage), vm.keyword)
}

// Search switches to keyword mode and back to page 1. A blank keyword
// restores the full listing.
func (vm *PostViewModel) Search(ctx context.Context, keyword string) {
	vm.load(ctx, 1, strings.TrimSpace(keyword))
}

func normalizePost(title, content, author string) (string, string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", "", ErrEmptyField
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = anonymousAuthor
	}
	return title, content, author, nil
}

// Create adds a post and reloads the list. It returns the new id and whether
// the post was stored.
func (vm *PostViewModel) Create(ctx context.Context, title, content, author string) (int64, bool) {
	title, content, author, err := normalizePost(title, content, author)
	if err != nil {
		vm.info(msgValidation)
		return 0, false
	}

	id, err := vm.store.Insert(ctx, title, content, author)
	if err != nil {
		vm.fail("add post", err)
		return 0, false
	}

	vm.log.Info().Int64("id", id).Str("author", author).Msg("post added")
	vm.info(msgAdded)
	vm.Fetch(ctx)
	return id, true
}

// Update rewrites a post and reloads the list. An id that no longer exists
// is not reported as a failure.
func (vm *PostViewModel) Update(ctx context.Context, id int64, title, content, author string) bool {
	title, content, author, err := normalizePost(title, content, author)
	if err != nil {
		vm.info(msgValidation)
		return false
	}

	if err := vm.store.Update(ctx, id, title, content, author); err != nil {
		vm.fail("update post", err)
		return false
	}

	vm.log.Info().Int64("id", id).Msg("post updated")
	vm.info(msgUpdated)
	vm.Fetch(ctx)
	return true
}

func (vm *PostViewModel) Remove(ctx context.Context, id int64) bool {
	if err := vm.store.DeleteOne(ctx, id); err != nil {
		vm.fail("delete post", err)
		return false
	}

	vm.log.Info().Int64("id", id).Msg("post deleted")
	vm.info(msgDeleted)
	vm.Fetch(ctx)
	return true
}

// RemoveMany deletes every post in ids and returns how many were removed.
// An empty ids leaves the state untouched.
func (vm *PostViewModel) RemoveMany(ctx context.Context, ids []int64) int {
	if len(ids) == 0 {
		return 0
	}

	removed, err := vm.store.DeleteMany(ctx, ids)
	if err != nil {
		vm.fail("delete posts", err)
		return 0
	}

	vm.log.Info().Int("requested", len(ids)).Int("removed", removed).Msg("posts deleted")
	vm.info(fmt.Sprintf("%d Posts Deleted", removed))
	vm.Fetch(ctx)
	return removed
}

// GetByID returns nil both when the post does not exist and when the lookup
// failed; failures are reported to listeners.
func (vm *PostViewModel) GetByID(ctx context.Context, id int64) *Post {
	post, err := vm.store.GetByID(ctx, id)
	if err != nil {
		vm.fail("load post", err)
		return nil
	}
	return post
}
