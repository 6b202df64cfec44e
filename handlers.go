package main

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// boardView remembers what the view model last published so that pages can
// be rendered from it. Messages are kept until the next render.
type boardView struct {
	posts    []Post
	current  int
	total    int
	infos    []string
	failures []string
}

func (v *boardView) PostsChanged(posts []Post) { v.posts = posts }

func (v *boardView) PagingChanged(current, total int) {
	v.current = current
	v.total = total
}

func (v *boardView) Info(message string)    { v.infos = append(v.infos, message) }
func (v *boardView) Failure(message string) { v.failures = append(v.failures, message) }

// drainFailures clears only the failures, leaving infos for the next render.
func (v *boardView) drainFailures() []string {
	failures := v.failures
	v.failures = nil
	return failures
}

func (v *boardView) drain() (infos, failures []string) {
	infos, failures = v.infos, v.failures
	v.infos, v.failures = nil, nil
	return infos, failures
}

// Board serves the board as local web pages. The view model expects one call
// at a time, so every handler holds mu for its whole run.
type Board struct {
	mu            sync.Mutex
	db            *sql.DB
	vm            *PostViewModel
	view          *boardView
	templates     map[string]*template.Template
	log           zerolog.Logger
	secureCookies bool
}

func NewBoard(db *sql.DB, vm *PostViewModel, log zerolog.Logger, secureCookies bool) *Board {
	b := &Board{
		db:            db,
		vm:            vm,
		view:          &boardView{current: 1, total: 1},
		templates:     loadTemplates(),
		log:           log.With().Str("component", "http").Logger(),
		secureCookies: secureCookies,
	}
	vm.Subscribe(b.view)
	vm.Fetch(context.Background())
	return b
}

func (b *Board) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", b.Home)
	mux.HandleFunc("GET /page/{n}", b.GoToPage)
	mux.HandleFunc("GET /prev/{step}", b.Prev)
	mux.HandleFunc("GET /next/{step}", b.Next)
	mux.HandleFunc("GET /search", b.Search)
	mux.HandleFunc("GET /post/{id}", b.Detail)
	mux.HandleFunc("/new", b.Create)
	mux.HandleFunc("/edit/{id}", b.Edit)
	mux.HandleFunc("POST /delete/{id}", b.Delete)
	mux.HandleFunc("POST /delete", b.DeleteSelected)
	mux.HandleFunc("/settings", b.Settings)

	return b.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (b *Board) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		b.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (b *Board) render(w http.ResponseWriter, r *http.Request, page string, status int, data map[string]any) {
	data["Infos"], data["Failures"] = b.view.drain()
	data["CSRFToken"] = b.ensureCSRFToken(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := b.templates[page].ExecuteTemplate(w, "base", data); err != nil {
		b.log.Error().Err(err).Str("page", page).Msg("rendering template")
	}
}

func (b *Board) renderList(w http.ResponseWriter, r *http.Request) {
	intro, err := getSetting(b.db, introKey)
	if err != nil {
		b.log.Error().Err(err).Msg("loading intro")
	}

	b.render(w, r, "list.html", http.StatusOK, map[string]any{
		"Title":      "List",
		"Posts":      b.view.posts,
		"Current":    b.view.current,
		"Total":      b.view.total,
		"TotalCount": b.vm.TotalCount(),
		"Keyword":    b.vm.Keyword(),
		"Intro":      intro,
	})
}

func pathInt(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func (b *Board) Home(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.Fetch(r.Context())
	b.renderList(w, r)
}

func (b *Board) GoToPage(w http.ResponseWriter, r *http.Request) {
	n, err := pathInt(r, "n")
	if err != nil {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.GoToPage(r.Context(), int(n))
	b.renderList(w, r)
}

func (b *Board) Prev(w http.ResponseWriter, r *http.Request) {
	step, err := pathInt(r, "step")
	if err != nil {
		http.Error(w, "Invalid step", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.GoPrev(r.Context(), int(step))
	b.renderList(w, r)
}

func (b *Board) Next(w http.ResponseWriter, r *http.Request) {
	step, err := pathInt(r, "step")
	if err != nil {
		http.Error(w, "Invalid step", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.GoNext(r.Context(), int(step))
	b.renderList(w, r)
}

func (b *Board) Search(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.Search(r.Context(), r.URL.Query().Get("q"))
	b.renderList(w, r)
}

// lookup returns the post with id, or writes a 404 or 500 response and
// returns nil.
func (b *Board) lookup(w http.ResponseWriter, r *http.Request, id int64) *Post {
	post := b.vm.GetByID(r.Context(), id)
	if post != nil {
		return post
	}

	if failures := b.view.drainFailures(); len(failures) > 0 {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	http.NotFound(w, r)
	return nil
}

func (b *Board) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	post := b.lookup(w, r, id)
	if post == nil {
		return
	}

	b.render(w, r, "detail.html", http.StatusOK, map[string]any{
		"Title":  post.Title,
		"Post":   post,
		"Edited": post.UpdatedAt.After(post.CreatedAt),
	})
}

type postForm struct {
	Title   string
	Content string
	Author  string
}

func readPostForm(r *http.Request) postForm {
	return postForm{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Author:  r.FormValue("author"),
	}
}

func (b *Board) Create(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		b.mu.Lock()
		defer b.mu.Unlock()

		b.render(w, r, "editor.html", http.StatusOK, map[string]any{
			"Title": "New Post",
			"Form":  postForm{},
		})

	case http.MethodPost:
		if !parseFormWithCSRF(w, r) {
			return
		}
		form := readPostForm(r)

		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.vm.Create(r.Context(), form.Title, form.Content, form.Author); !ok {
			b.render(w, r, "editor.html", http.StatusUnprocessableEntity, map[string]any{
				"Title": "New Post",
				"Form":  form,
			})
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Board) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b.mu.Lock()
		defer b.mu.Unlock()

		post := b.lookup(w, r, id)
		if post == nil {
			return
		}

		b.render(w, r, "editor.html", http.StatusOK, map[string]any{
			"Title":  fmt.Sprintf("Editing %q", post.Title),
			"PostID": post.ID,
			"Form":   postForm{Title: post.Title, Content: post.Content, Author: post.Author},
		})

	case http.MethodPost:
		if !parseFormWithCSRF(w, r) {
			return
		}
		form := readPostForm(r)

		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.vm.Update(r.Context(), id, form.Title, form.Content, form.Author) {
			b.render(w, r, "editor.html", http.StatusUnprocessableEntity, map[string]any{
				"Title":  "Edit Post",
				"PostID": id,
				"Form":   form,
			})
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Board) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.Remove(r.Context(), id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteSelected removes every post checked on the list page.
func (b *Board) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}

	var ids []int64
	for _, v := range r.Form["id"] {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.vm.RemoveMany(r.Context(), ids)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Board) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		intro, err := getSetting(b.db, introKey)
		if err != nil {
			b.log.Error().Err(err).Msg("loading intro")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		b.render(w, r, "settings.html", http.StatusOK, map[string]any{
			"Title": "Settings",
			"Intro": intro,
		})

	case http.MethodPost:
		if !parseFormWithCSRF(w, r) {
			return
		}

		if err := setSetting(b.db, introKey, r.FormValue("intro")); err != nil {
			b.log.Error().Err(err).Msg("saving intro")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
