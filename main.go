package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		l := newLogger("info", "console", os.Stderr)
		l.Fatal().Err(err).Msg("loading config")
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	// Settings always live in SQLite; with memory storage only the posts
	// are kept in process.
	dbPath := cfg.DBPath
	if cfg.Storage == "memory" {
		dbPath = ":memory:"
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("opening database")
	}
	defer db.Close()

	if err = initDB(db); err != nil {
		log.Fatal().Err(err).Msg("initializing database")
	}

	if err = seedSettings(db); err != nil {
		log.Fatal().Err(err).Msg("seeding settings")
	}

	store := openStore(cfg, db, log)
	defer store.Close()

	vm := NewPostViewModel(store, cfg.PageSize, log)
	board := NewBoard(db, vm, log, cfg.SecureCookies)

	log.Info().Str("addr", cfg.Addr).Str("storage", cfg.Storage).Int("page_size", cfg.PageSize).Msg("server starting")
	if err := http.ListenAndServe(cfg.Addr, board.routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func openStore(cfg Config, db *sql.DB, log zerolog.Logger) Store {
	if cfg.Storage == "memory" {
		store := newMemoryStore()
		if cfg.Seed {
			for _, p := range samplePosts {
				store.Insert(context.Background(), p.Title, p.Content, p.Author)
			}
		}
		return store
	}

	if cfg.Seed {
		n, err := seedDB(db)
		if err != nil {
			log.Fatal().Err(err).Msg("seeding database")
		}
		if n > 0 {
			log.Info().Int("posts", n).Msg("seeded sample posts")
		}
	}
	return newSQLiteStore(db)
}
