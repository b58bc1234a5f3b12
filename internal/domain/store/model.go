package store

import (
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// Condition is an asset condition, persisted with the original Indonesian labels.
type Condition string

const (
	ConditionBagus  Condition = "Bagus"
	ConditionNormal Condition = "Normal"
	ConditionRusak  Condition = "Rusak"
)

// ParseCondition matches case-insensitively and falls back to Normal for
// blank or unrecognized values.
func ParseCondition(s string) Condition {
	v := strings.TrimSpace(s)
	for _, c := range []Condition{ConditionBagus, ConditionNormal, ConditionRusak} {
		if strings.EqualFold(v, string(c)) {
			return c
		}
	}
	return ConditionNormal
}

type Frequency string

const (
	FreqHarian   Frequency = "harian"
	FreqMingguan Frequency = "mingguan"
	FreqBulanan  Frequency = "bulanan"
	FreqTahunan  Frequency = "tahunan"
	FreqSekali   Frequency = "sekali"
)

// ParseFrequency lower-cases the input; blank defaults to bulanan.
func ParseFrequency(s string) Frequency {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return FreqBulanan
	}
	return Frequency(v)
}

type ItemCategory struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

type Unit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AssetCategory struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

type Item struct {
	ID             string `json:"id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CategoryID     string `json:"categoryId"`
	PurchaseUnitID string `json:"purchaseUnitId"`
	SellingUnitID  string `json:"sellingUnitId"`
	// ConversionRate = berapa satuan penjualan per satu satuan pembelian (>= 1).
	ConversionRate int `json:"conversionRate"`
	// PurchasePrice is always stored per selling unit.
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice"`
}

// Inventory holds recorded stock in selling units, at most one row per item.
type Inventory struct {
	ItemID        string `json:"itemId"`
	RecordedStock int    `json:"recordedStock"`
}

type Asset struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"categoryId"`
	PurchaseDate string    `json:"purchaseDate"` // YYYY-MM-DD
	Value        float64   `json:"value"`
	Condition    Condition `json:"condition"`
}

type OperationalCost struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Frequency   Frequency `json:"frequency"`
}

type Investor struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SharePercentage float64 `json:"sharePercentage"`
}

type CashFlowEntry struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Store is the root aggregate. It owns every child collection by value and is
// always persisted/replaced as one document (last writer wins).
type Store struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Address         string            `json:"address,omitempty"`
	ItemCategories  []ItemCategory    `json:"itemCategories"`
	Units           []Unit            `json:"units"`
	AssetCategories []AssetCategory   `json:"assetCategories"`
	Items           []Item            `json:"items"`
	Inventory       []Inventory       `json:"inventory"`
	Assets          []Asset           `json:"assets"`
	Costs           []OperationalCost `json:"costs"`
	Investors       []Investor        `json:"investors"`
	CashFlow        []CashFlowEntry   `json:"cashFlow"`
	CapitalRecouped float64           `json:"capitalRecouped"`
	NetProfit       float64           `json:"netProfit"`
	SchemaVersion   int               `json:"schemaVersion"`
}

// New returns an empty store with all collections initialized.
func New(id, name, address string) *Store {
	s := &Store{ID: id, Name: name, Address: address, SchemaVersion: currentSchemaVersion}
	initCollections(s)
	return s
}

// Clone returns an independent deep copy of the aggregate.
func (s *Store) Clone() *Store {
	var out Store
	if err := deepcopy.Copy(&out, s); err != nil {
		// only reachable with a nil receiver
		panic(err)
	}
	return &out
}

func (s *Store) FindItemByName(name string) *Item {
	name = strings.TrimSpace(name)
	for i := range s.Items {
		if strings.EqualFold(strings.TrimSpace(s.Items[i].Name), name) {
			return &s.Items[i]
		}
	}
	return nil
}

func (s *Store) FindItemCategoryByName(name string) *ItemCategory {
	for i := range s.ItemCategories {
		if strings.EqualFold(s.ItemCategories[i].Name, name) {
			return &s.ItemCategories[i]
		}
	}
	return nil
}

func (s *Store) FindAssetCategoryByName(name string) *AssetCategory {
	for i := range s.AssetCategories {
		if strings.EqualFold(s.AssetCategories[i].Name, name) {
			return &s.AssetCategories[i]
		}
	}
	return nil
}

func (s *Store) FindUnitByName(name string) *Unit {
	for i := range s.Units {
		if strings.EqualFold(s.Units[i].Name, name) {
			return &s.Units[i]
		}
	}
	return nil
}

func (s *Store) FindUnitByID(id string) *Unit {
	for i := range s.Units {
		if s.Units[i].ID == id {
			return &s.Units[i]
		}
	}
	return nil
}

func (s *Store) FindAssetByCode(code string) *Asset {
	for i := range s.Assets {
		if s.Assets[i].Code == code {
			return &s.Assets[i]
		}
	}
	return nil
}

func (s *Store) FindCostByName(name string) *OperationalCost {
	for i := range s.Costs {
		if strings.EqualFold(s.Costs[i].Name, name) {
			return &s.Costs[i]
		}
	}
	return nil
}

func (s *Store) InventoryFor(itemID string) *Inventory {
	for i := range s.Inventory {
		if s.Inventory[i].ItemID == itemID {
			return &s.Inventory[i]
		}
	}
	return nil
}

// SetRecordedStock updates the inventory row for itemID, creating it when
// missing. Keeps the one-row-per-item invariant.
func (s *Store) SetRecordedStock(itemID string, stock int) {
	if inv := s.InventoryFor(itemID); inv != nil {
		inv.RecordedStock = stock
		return
	}
	s.Inventory = append(s.Inventory, Inventory{ItemID: itemID, RecordedStock: stock})
}
