package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"quantmarket/server/coach"
	"quantmarket/server/config"
	"quantmarket/server/store"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var migrate, sim bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--sim":
			sim = true
		}
	}

	cfg, err := config.Load(getenv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}

	if sim {
		runSim(cfg, deckSeedFromEnv())
		return
	}

	var db *store.DB
	if cfg.Database.URL != "" {
		db, err = store.Open(cfg.Database.URL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close(context.Background())
	}

	if migrate {
		if db == nil {
			log.Fatal("DATABASE_URL required for --migrate")
		}
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal(err)
		}
		log.Info("migrated")
		return
	}
	if db != nil && asBool(os.Getenv("AUTO_MIGRATE")) {
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal(err)
		}
		log.Info("migrated")
	}
	if db == nil {
		log.Warn("no DATABASE_URL set; game history disabled")
	}

	c := coach.New(cfg.Coach.Model, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      Router(cfg, db, c, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // coach calls can be slow
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Infof("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func asBool(s string) bool {
	switch s {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
