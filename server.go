package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/gorilla/mux"

	"github.com/gmllt/kboard/board"
)

// Server exposes the board over JSON API and serves static front-end files
type Server struct {
	Board     *board.Board
	Listen    string
	StaticDir string
	Version   string
	Dbg       bool
}

type boardResponse struct {
	Lists    []board.List  `json:"lists"`
	Message  string        `json:"message"`
	Prompt   *board.Prompt `json:"prompt,omitempty"`
	Dragging string        `json:"dragging,omitempty"`
}

// Run starts http server and blocks until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] http shutdown failed, %v", err)
		}
	}()

	log.Printf("[INFO] kanban server starting on %s", s.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(rest.Recoverer(log.Default()), rest.AppInfo("kboard", "gmllt", s.Version), rest.Ping,
		rest.Throttle(100), rest.SizeLimit(64*1024))
	if s.Dbg {
		r.Use(logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(rest.NoCache)
	api.HandleFunc("/board", s.getBoard).Methods("GET")
	api.HandleFunc("/snapshot", s.getSnapshot).Methods("GET")
	api.HandleFunc("/message", s.getMessage).Methods("GET")

	api.HandleFunc("/card", s.addCard).Methods("POST")
	api.HandleFunc("/card/{id}/edit", s.beginEdit).Methods("POST")
	api.HandleFunc("/card/{id}/key", s.editKey).Methods("POST")
	api.HandleFunc("/card/{id}", s.updateCard).Methods("PUT")
	api.HandleFunc("/card/{id}", s.deleteCard).Methods("DELETE")

	api.HandleFunc("/prompt", s.getPrompt).Methods("GET")
	api.HandleFunc("/prompt/{id}", s.answerPrompt).Methods("POST")

	api.HandleFunc("/drag/{id}", s.dragStart).Methods("POST")
	api.HandleFunc("/drag", s.dragEnd).Methods("DELETE")
	api.HandleFunc("/list/{id}/{event:over|enter|leave|drop}", s.listEvent).Methods("POST")

	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}
	return r
}

// GET /api/board
func (s *Server) getBoard(w http.ResponseWriter, _ *http.Request) {
	resp := boardResponse{Lists: s.Board.Lists(), Message: s.Board.Message(), Dragging: s.Board.Dragging()}
	if p, ok := s.Board.Prompt(); ok {
		resp.Prompt = &p
	}
	rest.RenderJSON(w, resp)
}

// GET /api/snapshot
func (s *Server) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	rest.RenderJSON(w, s.Board.Snapshot())
}

// GET /api/message
func (s *Server) getMessage(w http.ResponseWriter, _ *http.Request) {
	rest.RenderJSON(w, rest.JSON{"message": s.Board.Message()})
}

// POST /api/card {"text": "..."}
func (s *Server) addCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "can't decode card")
		return
	}
	card, err := s.Board.AddTask(r.Context(), req.Text)
	if err != nil {
		s.sendError(w, r, err, "can't add card")
		return
	}
	log.Printf("[INFO] card created: %+v", card)
	renderJSON(w, http.StatusCreated, card)
}

// POST /api/card/{id}/edit {"width": 400}
func (s *Server) beginEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width int `json:"width"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "can't decode edit request")
			return
		}
	}
	sess, err := s.Board.BeginEdit(mux.Vars(r)["id"], req.Width)
	if err != nil {
		s.sendError(w, r, err, "can't edit card")
		return
	}
	rest.RenderJSON(w, sess)
}

// PUT /api/card/{id} {"text": "..."} ends the edit, opening it first if needed
func (s *Server) updateCard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "can't decode update")
		return
	}
	if _, ok := s.Board.Editing(id); !ok {
		if _, err := s.Board.BeginEdit(id, 0); err != nil {
			s.sendError(w, r, err, "can't edit card")
			return
		}
	}
	card, err := s.Board.EndEdit(r.Context(), id, req.Text)
	if err != nil {
		s.sendError(w, r, err, "can't update card")
		return
	}
	log.Printf("[INFO] card updated: %s", id)
	rest.RenderJSON(w, card)
}

// POST /api/card/{id}/key {"key": "Enter", "text": "..."}
func (s *Server) editKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key  string `json:"key"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "can't decode key")
		return
	}
	ended, err := s.Board.EditKey(r.Context(), mux.Vars(r)["id"], req.Key, req.Text)
	if err != nil {
		s.sendError(w, r, err, "can't handle key")
		return
	}
	rest.RenderJSON(w, rest.JSON{"ended": ended})
}

// DELETE /api/card/{id} opens confirmation prompt
func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	p, err := s.Board.RequestDelete(mux.Vars(r)["id"])
	if err != nil {
		s.sendError(w, r, err, "can't delete card")
		return
	}
	renderJSON(w, http.StatusAccepted, p)
}

// GET /api/prompt
func (s *Server) getPrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Board.Prompt()
	if !ok {
		s.sendError(w, r, board.ErrPromptNotFound, "no open prompt")
		return
	}
	rest.RenderJSON(w, p)
}

// POST /api/prompt/{id} {"accept": true}
func (s *Server) answerPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "can't decode answer")
		return
	}
	if err := s.Board.ConfirmDelete(r.Context(), mux.Vars(r)["id"], req.Accept); err != nil {
		s.sendError(w, r, err, "can't answer prompt")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/drag/{id}
func (s *Server) dragStart(w http.ResponseWriter, r *http.Request) {
	s.Board.DragStart(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/drag
func (s *Server) dragEnd(w http.ResponseWriter, _ *http.Request) {
	s.Board.DragEnd()
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/list/{id}/{over|enter|leave|drop}
func (s *Server) listEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	listID := vars["id"]
	var err error
	switch vars["event"] {
	case "over":
		if !s.Board.DragOver(listID) {
			s.sendError(w, r, board.ErrListNotFound, "drop not allowed")
			return
		}
		rest.RenderJSON(w, rest.JSON{"accept": true})
		return
	case "enter":
		err = s.Board.DragEnter(listID)
	case "leave":
		err = s.Board.DragLeave(listID)
	case "drop":
		moved, dropErr := s.Board.Drop(r.Context(), listID)
		if dropErr != nil {
			s.sendError(w, r, dropErr, "can't drop card")
			return
		}
		rest.RenderJSON(w, rest.JSON{"moved": moved})
		return
	}
	if err != nil {
		s.sendError(w, r, err, "can't handle list event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, board.ErrEmptyTask):
		code, msg = http.StatusBadRequest, board.EmptyTaskMessage
	case errors.Is(err, board.ErrCardNotFound), errors.Is(err, board.ErrListNotFound), errors.Is(err, board.ErrPromptNotFound):
		code = http.StatusNotFound
	case errors.Is(err, board.ErrNotEditing):
		code = http.StatusConflict
	}
	rest.SendErrorJSON(w, r, log.Default(), code, err, msg)
}

func renderJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	rest.RenderJSON(w, v)
}
