package opname

import (
	"time"

	"github.com/drajad/manajemen-toko/internal/domain/store"
)

const StatusCompleted = "completed"

// SessionItem is one counted inventory line.
// Discrepancy = PhysicalCount - InitialStock (can be negative).
type SessionItem struct {
	ItemID        string `json:"itemId"`
	ItemName      string `json:"itemName"`
	Unit          string `json:"unit"`
	InitialStock  int    `json:"initialStock"`
	PhysicalCount int    `json:"physicalCount"`
	Discrepancy   int    `json:"discrepancy"`
}

type AssetChange struct {
	AssetID      string          `json:"assetId"`
	AssetName    string          `json:"assetName"`
	OldCondition store.Condition `json:"oldCondition"`
	NewCondition store.Condition `json:"newCondition"`
}

// Session is the immutable audit record of one completed reconciliation.
// It is written once and never mutated afterwards.
type Session struct {
	ID           string        `json:"id"`
	StoreID      string        `json:"storeId"`
	Date         time.Time     `json:"date"`
	Status       string        `json:"status"`
	Items        []SessionItem `json:"items"`
	AssetChanges []AssetChange `json:"assetChanges"`
}
