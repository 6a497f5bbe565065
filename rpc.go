package main

import (
	"encoding/json"
	"net/http"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nfmlabs/nfm/runtime"
)

// ServeRPC exposes the group over HTTP: submit a call, poll its
// record, run a view, tail the event log, read a book balance.
func ServeRPC(group *runtime.Group, conf *runtime.Configuration) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/calls", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Signer  string          `json:"signer"`
			Target  string          `json:"target"`
			Method  string          `json:"method"`
			Args    json.RawMessage `json:"args"`
			Deposit string          `json:"deposit"`
		}
		err := json.NewDecoder(req.Body).Decode(&body)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		deposit, err := runtime.ParseAmount(body.Deposit)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		id, err := group.Submit(req.Context(), body.Signer, body.Target, body.Method, body.Args, deposit)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		renderJSON(w, map[string]string{"call_id": id})
	})

	r.Get("/calls/{id}", func(w http.ResponseWriter, req *http.Request) {
		call, err := group.ReadCall(chi.URLParam(req, "id"))
		if err != nil {
			renderError(w, http.StatusInternalServerError, err)
			return
		}
		if call == nil {
			http.NotFound(w, req)
			return
		}
		renderJSON(w, call)
	})

	r.Post("/views", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Caller string          `json:"caller"`
			Target string          `json:"target"`
			Method string          `json:"method"`
			Args   json.RawMessage `json:"args"`
		}
		err := json.NewDecoder(req.Body).Decode(&body)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		reply, err := group.View(req.Context(), body.Caller, body.Target, body.Method, body.Args)
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if len(reply) == 0 {
			reply = []byte("null")
		}
		w.Write(reply)
	})

	r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
		events, err := group.Events(100)
		if err != nil {
			renderError(w, http.StatusInternalServerError, err)
			return
		}
		view := make([]map[string]interface{}, 0, len(events))
		for _, e := range events {
			view = append(view, map[string]interface{}{
				"id":         e.Id,
				"contract":   e.Contract,
				"payload":    json.RawMessage(e.Payload),
				"created_at": e.CreatedAt,
			})
		}
		renderJSON(w, view)
	})

	r.Get("/balances/{account}", func(w http.ResponseWriter, req *http.Request) {
		amount, err := group.BalanceOf(chi.URLParam(req, "account"))
		if err != nil {
			renderError(w, http.StatusInternalServerError, err)
			return
		}
		renderJSON(w, map[string]string{"balance": amount.String()})
	})

	logger.Printf("RPC listen %s\n", conf.Listen)
	return http.ListenAndServe(conf.Listen, r)
}

func renderJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		logger.Verbosef("renderJSON() => %v\n", err)
	}
}

func renderError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
