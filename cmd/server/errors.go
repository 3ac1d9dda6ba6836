package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Simplici0/costcalc/internal/pricing"
	"github.com/Simplici0/costcalc/internal/store"
)

const (
	msgInvalidScenario    = "Inserisci un nome valido e un numero di utenti maggiore di 0"
	msgPredefinedScenario = "Non puoi rimuovere gli scenari predefiniti"
	msgNotFound           = "Elemento non trovato"
	msgFormulaPriced      = "Il costo di questo servizio è calcolato automaticamente"
	msgInvalidKind        = "Tipo di servizio non valido"
	msgInvalidMedia       = "I valori dei media devono essere maggiori o uguali a 0"
	msgInvalidBody        = "Richiesta non valida"
	msgInternal           = "Errore interno"
)

// writeStoreError maps domain errors to a status code and user-facing message.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidScenario):
		writeError(w, http.StatusBadRequest, msgInvalidScenario)
	case errors.Is(err, store.ErrPredefinedScenario):
		writeError(w, http.StatusConflict, msgPredefinedScenario)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, store.ErrFormulaPriced):
		writeError(w, http.StatusConflict, msgFormulaPriced)
	case errors.Is(err, store.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, msgInvalidKind)
	case errors.Is(err, store.ErrInvalidMedia):
		writeError(w, http.StatusBadRequest, msgInvalidMedia)
	case errors.Is(err, pricing.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), pricing.ErrInvalidParams.Error()+": "))
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}
