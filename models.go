package main

import "time"

const anonymousAuthor = "anonymous"

type Post struct {
	ID        int64
	Title     string
	Content   string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Page is one slice of the board as returned by the pager.
type Page struct {
	Posts      []Post
	Number     int
	TotalCount int
	TotalPages int
}
