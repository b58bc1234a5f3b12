package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/drajad/manajemen-toko/internal/domain/opname"
	"github.com/drajad/manajemen-toko/internal/domain/profiles"
	"github.com/drajad/manajemen-toko/internal/domain/store"
	"github.com/drajad/manajemen-toko/internal/service"
	"github.com/drajad/manajemen-toko/internal/sheets"
)

// Imported workbooks are read fully into memory; anything past this is not a
// plausible store spreadsheet.
const maxWorkbookBytes = 20 << 20

// StoreWatcher and HistoryWatcher expose the repository's real-time push
// capability to the SSE endpoints.
type StoreWatcher interface {
	Subscribe(ctx context.Context, onChange func([]store.Store)) (func(), error)
}

type HistoryWatcher interface {
	Subscribe(ctx context.Context, onChange func([]opname.Session)) (func(), error)
}

type ProfileSource interface {
	GetByUID(ctx context.Context, uid string) (*profiles.Profile, error)
}

type Handlers struct {
	svc      *service.Service
	profiles ProfileSource
	stores   StoreWatcher
	history  HistoryWatcher
	log      *slog.Logger
}

func NewHandlers(svc *service.Service, p ProfileSource, sw StoreWatcher, hw HistoryWatcher, log *slog.Logger) *Handlers {
	return &Handlers{svc: svc, profiles: p, stores: sw, history: hw, log: log}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stores", h.listStores)
	mux.HandleFunc("GET /api/stores/{id}", h.getStore)
	mux.HandleFunc("GET /api/stores/{id}/export", h.exportWorkbook)
	mux.HandleFunc("GET /api/stores/{id}/opname", h.opnameHistory)
	mux.HandleFunc("GET /api/stores/{id}/opname/latest", h.latestOpname)
	mux.HandleFunc("GET /api/stores/{id}/opname/draft", h.opnameDraft)
	mux.HandleFunc("GET /api/watch/stores", h.watchStores)
	mux.HandleFunc("GET /api/watch/history", h.watchHistory)

	// Mutations go through the identity gate: expired demo accounts are
	// rejected before any handler runs.
	mux.Handle("POST /api/stores", h.requireUser(h.createStore))
	mux.Handle("PUT /api/stores/{id}", h.requireUser(h.updateStore))
	mux.Handle("PUT /api/stores/{id}/info", h.requireUser(h.updateStoreInfo))
	mux.Handle("DELETE /api/stores/{id}", h.requireUser(h.deleteStore))
	mux.Handle("POST /api/stores/{id}/import", h.requireUser(h.importWorkbook))
	mux.Handle("POST /api/stores/{id}/opname", h.requireUser(h.completeOpname))
}

// requireUser resolves the opaque uid set by the auth proxy and blocks demo
// identities whose trial has ended.
func (h *Handlers) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if uid == "" {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}
		p, err := h.profiles.GetByUID(r.Context(), uid)
		if err != nil {
			h.log.Error("profile lookup failed", "uid", uid, "err", err)
			writeError(w, http.StatusInternalServerError, "profile lookup failed")
			return
		}
		if p == nil {
			writeError(w, http.StatusUnauthorized, "unknown identity")
			return
		}
		if p.Expired(time.Now()) {
			writeError(w, http.StatusForbidden, "demo trial expired")
			return
		}
		next(w, r)
	})
}

/* Store CRUD */

func (h *Handlers) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.ListStores(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if stores == nil {
		stores = []store.Store{}
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *Handlers) getStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetStore(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) createStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	st, err := h.svc.CreateStore(r.Context(), req.Name, req.Address)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *Handlers) updateStore(w http.ResponseWriter, r *http.Request) {
	var st store.Store
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st.ID = r.PathValue("id")
	if err := h.svc.UpdateStore(r.Context(), &st); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &st)
}

func (h *Handlers) updateStoreInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := h.svc.UpdateStoreInfo(r.Context(), r.PathValue("id"), req.Name, req.Address)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) deleteStore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStore(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* Spreadsheet pipeline */

func (h *Handlers) importWorkbook(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxWorkbookBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	if len(data) > maxWorkbookBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "workbook too large")
		return
	}
	scope := sheets.ParseScope(r.URL.Query().Get("scope"))
	sum, err := h.svc.ImportWorkbook(r.Context(), r.PathValue("id"), data, scope)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handlers) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	scope := sheets.ParseScope(r.URL.Query().Get("scope"))
	data, name, err := h.svc.ExportWorkbook(r.Context(), r.PathValue("id"), scope)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

/* Reconciliation */

func (h *Handlers) opnameDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.StartOpname(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handlers) completeOpname(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []struct {
			ItemID        string `json:"itemId"`
			PhysicalCount int    `json:"physicalCount"`
		} `json:"items"`
		Assets []struct {
			AssetID      string `json:"assetId"`
			NewCondition string `json:"newCondition"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, err := h.svc.StartOpname(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	for _, it := range req.Items {
		if err := draft.SetPhysicalCount(it.ItemID, it.PhysicalCount); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	for _, a := range req.Assets {
		cond := store.Condition(strings.TrimSpace(a.NewCondition))
		if err := draft.SetAssetCondition(a.AssetID, cond); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess, err := h.svc.CompleteOpname(r.Context(), draft)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handlers) opnameHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.OpnameHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if history == nil {
		history = []opname.Session{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handlers) latestOpname(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.LatestOpname(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "no opname sessions yet")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

/* Real-time watch (SSE) */

func (h *Handlers) watchStores(w http.ResponseWriter, r *http.Request) {
	watchSSE(w, r, func(ctx context.Context, push func(any)) (func(), error) {
		return h.stores.Subscribe(ctx, func(ss []store.Store) { push(ss) })
	})
}

func (h *Handlers) watchHistory(w http.ResponseWriter, r *http.Request) {
	watchSSE(w, r, func(ctx context.Context, push func(any)) (func(), error) {
		return h.history.Subscribe(ctx, func(ss []opname.Session) { push(ss) })
	})
}

func watchSSE(w http.ResponseWriter, r *http.Request, subscribe func(context.Context, func(any)) (func(), error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch := make(chan any, 1)
	unsubscribe, err := subscribe(r.Context(), func(v any) {
		select {
		case ch <- v:
		default:
			// a slow client only ever skips to the next full snapshot
		}
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "subscribe failed")
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case v := <-ch:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}

/* Helpers */

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStoreNotFound), errors.Is(err, sheets.ErrSheetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sheets.ErrParseFailure):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
