// Package service orchestrates the load-modify-save flows around the
// reconciliation engine and the spreadsheet pipeline. Every mutating flow is
// one read-modify-write round trip on the whole aggregate; the repository
// offers no field-level writes, so concurrent writers race at document
// granularity and the last one wins.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/drajad/manajemen-toko/internal/domain/opname"
	"github.com/drajad/manajemen-toko/internal/domain/store"
	"github.com/drajad/manajemen-toko/internal/infra/metrics"
	"github.com/drajad/manajemen-toko/internal/sheets"
)

var ErrStoreNotFound = errors.New("store not found")

type StoreRepo interface {
	List(ctx context.Context) ([]store.Store, error)
	GetByID(ctx context.Context, id string) (*store.Store, error)
	Create(ctx context.Context, s *store.Store) error
	Update(ctx context.Context, s *store.Store) error
	Delete(ctx context.Context, id string) error
}

type SessionRepo interface {
	Complete(ctx context.Context, sess *opname.Session, applied *store.Store) error
	ListByStore(ctx context.Context, storeID string) ([]opname.Session, error)
}

type Service struct {
	stores   StoreRepo
	sessions SessionRepo
	log      *slog.Logger
	metrics  *metrics.Metrics
}

func New(stores StoreRepo, sessions SessionRepo, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{stores: stores, sessions: sessions, log: log, metrics: m}
}

/* Store CRUD */

func (s *Service) ListStores(ctx context.Context) ([]store.Store, error) {
	return s.stores.List(ctx)
}

func (s *Service) GetStore(ctx context.Context, id string) (*store.Store, error) {
	st, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrStoreNotFound
	}
	return st, nil
}

func (s *Service) CreateStore(ctx context.Context, name, address string) (*store.Store, error) {
	st := store.New(uuid.NewString(), name, address)
	if err := s.stores.Create(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("store created", "store_id", st.ID, "name", st.Name)
	return st, nil
}

// UpdateStoreInfo changes only name/address, leaving the collections alone.
func (s *Service) UpdateStoreInfo(ctx context.Context, id, name, address string) (*store.Store, error) {
	st, err := s.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Name = name
	st.Address = address
	if err := s.stores.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// UpdateStore replaces the whole aggregate (last writer wins).
func (s *Service) UpdateStore(ctx context.Context, st *store.Store) error {
	return s.stores.Update(ctx, st)
}

// DeleteStore removes the store and all of its opname sessions.
func (s *Service) DeleteStore(ctx context.Context, id string) error {
	if err := s.stores.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrStoreNotFound
		}
		return err
	}
	s.log.Info("store deleted", "store_id", id)
	return nil
}

/* Spreadsheet pipeline */

// ImportWorkbook merges a workbook into the store and persists the result.
// A parse failure or missing sheet aborts before anything is saved.
func (s *Service) ImportWorkbook(ctx context.Context, storeID string, data []byte, scope sheets.Scope) (sheets.Summary, error) {
	st, err := s.GetStore(ctx, storeID)
	if err != nil {
		return sheets.Summary{}, err
	}
	merged, sum, err := sheets.Import(st, data, scope)
	if err != nil {
		s.metrics.Imports.WithLabelValues("failure").Inc()
		return sheets.Summary{}, err
	}
	if err := s.stores.Update(ctx, merged); err != nil {
		s.metrics.Imports.WithLabelValues("failure").Inc()
		return sheets.Summary{}, fmt.Errorf("persist import: %w", err)
	}
	s.metrics.Imports.WithLabelValues("success").Inc()
	s.log.Info("workbook imported",
		"store_id", storeID, "scope", string(scope),
		"added", sum.Added, "updated", sum.Updated)
	return sum, nil
}

func (s *Service) ExportWorkbook(ctx context.Context, storeID string, scope sheets.Scope) ([]byte, string, error) {
	st, err := s.GetStore(ctx, storeID)
	if err != nil {
		return nil, "", err
	}
	data, err := sheets.BuildWorkbook(st, scope)
	if err != nil {
		return nil, "", err
	}
	s.metrics.Exports.Inc()
	return data, sheets.Filename(st, scope), nil
}

/* Reconciliation */

func (s *Service) StartOpname(ctx context.Context, storeID string) (*opname.Draft, error) {
	st, err := s.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return opname.StartSession(st), nil
}

// CompleteOpname finalizes the draft into an immutable session and applies it
// onto the store; session insert and store update land in one transaction.
func (s *Service) CompleteOpname(ctx context.Context, draft *opname.Draft) (*opname.Session, error) {
	st, err := s.GetStore(ctx, draft.StoreID)
	if err != nil {
		return nil, err
	}
	sess := opname.Finalize(draft)
	applied := opname.Apply(st, sess)
	if err := s.sessions.Complete(ctx, sess, applied); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	s.metrics.OpnameSessions.Inc()
	s.log.Info("opname completed",
		"store_id", draft.StoreID, "session_id", sess.ID,
		"items", len(sess.Items), "asset_changes", len(sess.AssetChanges))
	return sess, nil
}

func (s *Service) OpnameHistory(ctx context.Context, storeID string) ([]opname.Session, error) {
	return s.sessions.ListByStore(ctx, storeID)
}

// LatestOpname returns the newest session for the store, or nil.
func (s *Service) LatestOpname(ctx context.Context, storeID string) (*opname.Session, error) {
	history, err := s.sessions.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}
