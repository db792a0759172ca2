package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quantmarket/server/agent"
	"quantmarket/server/coach"
	"quantmarket/server/config"
	"quantmarket/server/engine"
	"quantmarket/server/store"
)

// registry holds live sessions in memory; the store only sees settled games.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*engine.Session)}
}

func (r *registry) add(s *engine.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *registry) get(id string) (*engine.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func Router(cfg *config.Config, db *store.DB, c *coach.Coach, log *logrus.Logger) http.Handler {
	reg := newRegistry()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/api/games", func(w http.ResponseWriter, req *http.Request) {
		s := engine.NewSession(uuid.NewString(), cfg.Market, 0)
		reg.add(s)
		log.WithField("game", s.ID).Info("game created")
		writeJSON(w, http.StatusCreated, s.State())
	})

	r.Get("/api/games", func(w http.ResponseWriter, req *http.Request) {
		if db == nil {
			writeJSON(w, http.StatusOK, map[string]any{"rows": []store.GameRow{}})
			return
		}
		rows, err := db.RecentGames(req.Context(), 50)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
	})

	r.Route("/api/games/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			s, ok := reg.get(chi.URLParam(req, "id"))
			if !ok {
				http.Error(w, "game not found", http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, s.State())
		})

		r.Post("/trade", func(w http.ResponseWriter, req *http.Request) {
			s, ok := reg.get(chi.URLParam(req, "id"))
			if !ok {
				http.Error(w, "game not found", http.StatusNotFound)
				return
			}
			var in struct {
				Side         engine.Side `json:"side"`
				Counterparty int         `json:"counterparty"`
			}
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				http.Error(w, "bad request body", http.StatusBadRequest)
				return
			}
			t, err := s.Trade(in.Side, in.Counterparty)
			if err != nil {
				http.Error(w, err.Error(), tradeStatus(err))
				return
			}
			// Engine state is committed; the coaching call can only affect
			// the question text.
			st := s.State()
			snap := agent.BuildSnapshot(st, string(t.Side), map[string]any{
				"counterparty": t.Counterparty,
				"price":        t.Price,
			})
			writeJSON(w, http.StatusOK, map[string]any{
				"state":    st,
				"trade":    t,
				"question": c.Question(req.Context(), snap),
			})
		})

		r.Post("/next-round", func(w http.ResponseWriter, req *http.Request) {
			s, ok := reg.get(chi.URLParam(req, "id"))
			if !ok {
				http.Error(w, "game not found", http.StatusNotFound)
				return
			}
			card, err := s.NextRound()
			if err != nil {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			st := s.State()
			snap := agent.BuildSnapshot(st, "reveal", map[string]any{"card": card})
			writeJSON(w, http.StatusOK, map[string]any{
				"state":    st,
				"question": c.Question(req.Context(), snap),
			})
		})

		r.Post("/end", func(w http.ResponseWriter, req *http.Request) {
			s, ok := reg.get(chi.URLParam(req, "id"))
			if !ok {
				http.Error(w, "game not found", http.StatusNotFound)
				return
			}
			finalValue, finalPL, err := s.EndGame()
			if err != nil {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			st := s.State()
			if db != nil {
				if err := db.SaveGame(req.Context(), st); err != nil {
					// History is best effort; the settlement stands.
					log.WithError(err).WithField("game", st.ID).Error("save game failed")
				}
			}
			snap := agent.BuildSnapshot(st, "game_end", map[string]any{
				"trueValue": finalValue,
				"position":  st.Position,
				"cash":      st.Cash,
				"finalPL":   finalPL,
			})
			writeJSON(w, http.StatusOK, map[string]any{
				"state":    st,
				"question": c.Question(req.Context(), snap),
			})
		})
	})

	return r
}

func tradeStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrGameEnded), errors.Is(err, engine.ErrAlreadyTraded):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
