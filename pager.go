package main

import (
	"context"
	"strings"
)

const defaultPageSize = 16

// totalPages never reports zero pages: an empty board is page 1 of 1.
func totalPages(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

func pageOffset(page, perPage int) int {
	return (page - 1) * perPage
}

// pager turns a page number and keyword into store calls.
type pager struct {
	store   Store
	perPage int
}

func newPager(store Store, perPage int) *pager {
	if perPage <= 0 {
		perPage = defaultPageSize
	}
	return &pager{store: store, perPage: perPage}
}

// Fetch returns the requested page. Pages below 1 are read as page 1. A
// keyword that is blank after trimming selects the unfiltered listing.
func (p *pager) Fetch(ctx context.Context, page int, keyword string) (Page, error) {
	page = max(page, 1)
	keyword = strings.TrimSpace(keyword)
	offset := pageOffset(page, p.perPage)

	var (
		total int
		posts []Post
		err   error
	)

	if keyword != "" {
		if total, err = p.store.SearchCount(ctx, keyword); err != nil {
			return Page{}, err
		}
		if posts, err = p.store.SearchPage(ctx, keyword, offset, p.perPage); err != nil {
			return Page{}, err
		}
	} else {
		if total, err = p.store.Count(ctx); err != nil {
			return Page{}, err
		}
		if posts, err = p.store.GetPage(ctx, offset, p.perPage); err != nil {
			return Page{}, err
		}
	}

	return Page{
		Posts:      posts,
		Number:     page,
		TotalCount: total,
		TotalPages: totalPages(total, p.perPage),
	}, nil
}
