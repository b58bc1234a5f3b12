package opname

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drajad/manajemen-toko/internal/domain/store"
)

var (
	ErrNegativeCount    = errors.New("physical count must be >= 0")
	ErrUnknownItem      = errors.New("item is not part of this draft")
	ErrUnknownAsset     = errors.New("asset is not part of this draft")
	ErrInvalidCondition = errors.New("invalid asset condition")
)

// DraftItem mirrors SessionItem while the operator is still counting.
type DraftItem struct {
	ItemID        string `json:"itemId"`
	ItemName      string `json:"itemName"`
	Unit          string `json:"unit"`
	InitialStock  int    `json:"initialStock"`
	PhysicalCount int    `json:"physicalCount"`
}

// Draft is the working copy of a reconciliation in progress. Counts default
// to the recorded stock and conditions to the current condition, so an
// untouched draft finalizes with zero discrepancies.
type Draft struct {
	StoreID string        `json:"storeId"`
	Items   []DraftItem   `json:"items"`
	Assets  []AssetChange `json:"assets"`
}

// StartSession seeds a draft from the store's current inventory and assets.
func StartSession(s *store.Store) *Draft {
	d := &Draft{StoreID: s.ID}
	for _, inv := range s.Inventory {
		item := DraftItem{
			ItemID:        inv.ItemID,
			InitialStock:  inv.RecordedStock,
			PhysicalCount: inv.RecordedStock,
		}
		for i := range s.Items {
			if s.Items[i].ID == inv.ItemID {
				item.ItemName = s.Items[i].Name
				if u := s.FindUnitByID(s.Items[i].SellingUnitID); u != nil {
					item.Unit = u.Name
				}
				break
			}
		}
		d.Items = append(d.Items, item)
	}
	for _, a := range s.Assets {
		d.Assets = append(d.Assets, AssetChange{
			AssetID:      a.ID,
			AssetName:    a.Name,
			OldCondition: a.Condition,
			NewCondition: a.Condition,
		})
	}
	return d
}

// SetPhysicalCount records a counted quantity. Negative counts are rejected
// here, at the edit boundary, not clamped.
func (d *Draft) SetPhysicalCount(itemID string, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCount, count)
	}
	for i := range d.Items {
		if d.Items[i].ItemID == itemID {
			d.Items[i].PhysicalCount = count
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
}

func (d *Draft) SetAssetCondition(assetID string, cond store.Condition) error {
	switch cond {
	case store.ConditionBagus, store.ConditionNormal, store.ConditionRusak:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCondition, cond)
	}
	for i := range d.Assets {
		if d.Assets[i].AssetID == assetID {
			d.Assets[i].NewCondition = cond
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAsset, assetID)
}

// Finalize produces the immutable session: discrepancies computed, date
// stamped, fresh id assigned. It does not touch the store.
func Finalize(d *Draft) *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		StoreID: d.StoreID,
		Date:    time.Now().UTC(),
		Status:  StatusCompleted,
	}
	for _, it := range d.Items {
		sess.Items = append(sess.Items, SessionItem{
			ItemID:        it.ItemID,
			ItemName:      it.ItemName,
			Unit:          it.Unit,
			InitialStock:  it.InitialStock,
			PhysicalCount: it.PhysicalCount,
			Discrepancy:   it.PhysicalCount - it.InitialStock,
		})
	}
	sess.AssetChanges = append(sess.AssetChanges, d.Assets...)
	return sess
}

// Apply writes a completed session back onto a copy of the store: recorded
// stock becomes the physical count, asset conditions become the new
// condition. Rows without a matching session entry stay untouched, and
// re-applying an already-applied session changes nothing.
func Apply(s *store.Store, sess *Session) *store.Store {
	out := s.Clone()

	counts := make(map[string]int, len(sess.Items))
	for _, it := range sess.Items {
		counts[it.ItemID] = it.PhysicalCount
	}
	for i := range out.Inventory {
		if c, ok := counts[out.Inventory[i].ItemID]; ok {
			out.Inventory[i].RecordedStock = c
		}
	}

	conds := make(map[string]store.Condition, len(sess.AssetChanges))
	for _, ch := range sess.AssetChanges {
		conds[ch.AssetID] = ch.NewCondition
	}
	for i := range out.Assets {
		if c, ok := conds[out.Assets[i].ID]; ok {
			out.Assets[i].Condition = c
		}
	}
	return out
}
