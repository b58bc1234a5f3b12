package sheets

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/drajad/manajemen-toko/internal/domain/store"
)

// Summary counts how an import batch landed.
type Summary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

// Import merges a workbook into a copy of the store and returns the merged
// aggregate with row counts. The input store is never mutated: either the
// whole batch lands on the returned copy, or an error comes back and the
// caller persists nothing. Rows are processed in sheet order, so a later row
// with the same natural key overwrites an earlier one (last-in-batch wins).
func Import(src *store.Store, data []byte, scope Scope) (*store.Store, Summary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, Summary{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	defer func() { _ = f.Close() }()

	st := src.Clone()
	var sum Summary

	if scope == ScopeAll {
		for _, name := range f.GetSheetList() {
			rows, err := f.GetRows(name)
			if err != nil {
				return nil, Summary{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
			}
			importSheet(st, name, rows, &sum)
		}
		return st, sum, nil
	}

	kw := scope.keyword()
	var target string
	for _, name := range f.GetSheetList() {
		if strings.Contains(strings.ToLower(name), kw) {
			target = name
			break
		}
	}
	if target == "" {
		return nil, Summary{}, fmt.Errorf("%w: scope %s", ErrSheetNotFound, scope)
	}
	rows, err := f.GetRows(target)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	importSheet(st, target, rows, &sum)
	return st, sum, nil
}

// importSheet dispatches by sheet name; unrecognized sheets are skipped
// without error.
func importSheet(st *store.Store, name string, rows [][]string, sum *Summary) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "barang"):
		importItems(st, rows, sum)
	case strings.Contains(lower, "aset"):
		importAssets(st, rows, sum)
	case strings.Contains(lower, "biaya"):
		importCosts(st, rows, sum)
	}
}

func importItems(st *store.Store, rows [][]string, sum *Summary) {
	if len(rows) < 2 {
		return
	}
	cm := resolveColumns(rows[0], itemAliases)

	for _, row := range rows[1:] {
		name, ok := cm.cell(row, fieldItemName)
		if !ok {
			continue // blank/padding row
		}

		catName, _ := cm.cell(row, fieldCategory)
		category := ensureItemCategory(st, catName)

		purchaseName, _ := cm.cell(row, fieldPurchaseUnit)
		sellingName, _ := cm.cell(row, fieldSellingUnit)
		purchaseUnit := ensureUnit(st, purchaseName)
		sellingUnit := ensureUnit(st, sellingName)
		// A sheet that names only one unit describes a 1:1 store: both
		// units collapse onto the single one.
		if purchaseUnit == nil {
			purchaseUnit = sellingUnit
		}
		if sellingUnit == nil {
			sellingUnit = purchaseUnit
		}

		convCell, _ := cm.cell(row, fieldConversion)
		conv := conversionRate(convCell)

		// Purchase price is stored per selling unit. Newer sheets carry it
		// directly; older ones only have the per-purchase-unit price, which
		// is divided down by the conversion rate.
		perSellingCell, _ := cm.cell(row, fieldPricePerSellingUnit)
		perPurchaseCell, _ := cm.cell(row, fieldPricePerPurchaseUnit)
		purchasePrice := 0.0
		if v := floatOr(perSellingCell, 0); v > 0 {
			purchasePrice = v
		} else if v := floatOr(perPurchaseCell, 0); v > 0 {
			purchasePrice = v / float64(conv)
		}

		sellingCell, _ := cm.cell(row, fieldSellingPrice)
		sellingPrice := floatOr(sellingCell, 0)

		stock, hasStock := resolveStock(cm, row, conv)

		desc, _ := cm.cell(row, fieldDescription)

		categoryID := ""
		if category != nil {
			categoryID = category.ID
		}
		purchaseUnitID, sellingUnitID := "", ""
		if purchaseUnit != nil {
			purchaseUnitID = purchaseUnit.ID
		}
		if sellingUnit != nil {
			sellingUnitID = sellingUnit.ID
		}

		if existing := st.FindItemByName(name); existing != nil {
			existing.Name = name
			existing.Description = desc
			existing.CategoryID = categoryID
			existing.PurchaseUnitID = purchaseUnitID
			existing.SellingUnitID = sellingUnitID
			existing.ConversionRate = conv
			existing.PurchasePrice = purchasePrice
			existing.SellingPrice = sellingPrice
			// A row without any stock column keeps the recorded stock as is.
			if hasStock {
				st.SetRecordedStock(existing.ID, stock)
			}
			sum.Updated++
			continue
		}

		sku, ok := cm.cell(row, fieldSKU)
		if !ok {
			prefix := "BRG"
			if category != nil && category.Prefix != "" {
				prefix = category.Prefix
			}
			sku = fmt.Sprintf("%s-%03d", prefix, len(st.Items)+1)
		}
		item := store.Item{
			ID:             uuid.NewString(),
			SKU:            sku,
			Name:           name,
			Description:    desc,
			CategoryID:     categoryID,
			PurchaseUnitID: purchaseUnitID,
			SellingUnitID:  sellingUnitID,
			ConversionRate: conv,
			PurchasePrice:  purchasePrice,
			SellingPrice:   sellingPrice,
		}
		st.Items = append(st.Items, item)
		if !hasStock {
			stock = 0
		}
		st.Inventory = append(st.Inventory, store.Inventory{ItemID: item.ID, RecordedStock: stock})
		sum.Added++
	}
}

// resolveStock applies the three-tier stock priority: combined total column,
// then purchase-qty + selling-remainder, then the legacy recorded column.
// ok=false means no stock column had a value and the caller must preserve
// whatever is already recorded.
func resolveStock(cm columnMap, row []string, conv int) (int, bool) {
	if v, ok := cm.cell(row, fieldStockTotal); ok {
		n, _ := parseLeadingInt(v)
		return n, true
	}
	pv, pok := cm.cell(row, fieldStockPurchaseUnits)
	sv, sok := cm.cell(row, fieldStockRemainder)
	if pok || sok {
		p, _ := parseLeadingInt(pv)
		s, _ := parseLeadingInt(sv)
		return p*conv + s, true
	}
	if v, ok := cm.cell(row, fieldStockLegacy); ok {
		n, _ := parseLeadingInt(v)
		return n, true
	}
	return 0, false
}

func importAssets(st *store.Store, rows [][]string, sum *Summary) {
	if len(rows) < 2 {
		return
	}
	cm := resolveColumns(rows[0], assetAliases)
	now := time.Now()

	for _, row := range rows[1:] {
		code, hasCode := cm.cell(row, fieldAssetCode)
		name, hasName := cm.cell(row, fieldAssetName)
		if !hasCode && !hasName {
			continue
		}

		catName, _ := cm.cell(row, fieldCategory)
		category := ensureAssetCategory(st, catName)
		categoryID := ""
		if category != nil {
			categoryID = category.ID
		}

		condCell, _ := cm.cell(row, fieldCondition)
		dateCell, _ := cm.cell(row, fieldPurchaseDate)
		valueCell, _ := cm.cell(row, fieldValue)
		desc, _ := cm.cell(row, fieldDescription)

		condition := store.ParseCondition(condCell)
		purchaseDate := parseDate(dateCell, now)
		value := floatOr(valueCell, 0)

		if hasCode {
			if existing := st.FindAssetByCode(code); existing != nil {
				existing.Name = name
				existing.Description = desc
				existing.CategoryID = categoryID
				existing.PurchaseDate = purchaseDate
				existing.Value = value
				existing.Condition = condition
				sum.Updated++
				continue
			}
		}

		if code == "" {
			prefix := "AST"
			if category != nil && category.Prefix != "" {
				prefix = category.Prefix
			}
			code = fmt.Sprintf("%s-%03d", prefix, len(st.Assets)+1)
		}
		st.Assets = append(st.Assets, store.Asset{
			ID:           uuid.NewString(),
			Code:         code,
			Name:         name,
			Description:  desc,
			CategoryID:   categoryID,
			PurchaseDate: purchaseDate,
			Value:        value,
			Condition:    condition,
		})
		sum.Added++
	}
}

func importCosts(st *store.Store, rows [][]string, sum *Summary) {
	if len(rows) < 2 {
		return
	}
	cm := resolveColumns(rows[0], costAliases)

	for _, row := range rows[1:] {
		name, ok := cm.cell(row, fieldCostName)
		if !ok {
			continue
		}
		desc, _ := cm.cell(row, fieldDescription)
		amountCell, _ := cm.cell(row, fieldAmount)
		freqCell, _ := cm.cell(row, fieldFrequency)

		amount := floatOr(amountCell, 0)
		freq := store.ParseFrequency(freqCell)

		if existing := st.FindCostByName(name); existing != nil {
			existing.Name = name
			existing.Description = desc
			existing.Amount = amount
			existing.Frequency = freq
			sum.Updated++
			continue
		}
		st.Costs = append(st.Costs, store.OperationalCost{
			ID:          uuid.NewString(),
			Name:        name,
			Description: desc,
			Amount:      amount,
			Frequency:   freq,
		})
		sum.Added++
	}
}

// ensureItemCategory resolves a category by case-insensitive name,
// synthesizing one (prefix = first 3 letters, uppercased) when missing.
// Blank names resolve to nil.
func ensureItemCategory(st *store.Store, name string) *store.ItemCategory {
	if name == "" {
		return nil
	}
	if c := st.FindItemCategoryByName(name); c != nil {
		return c
	}
	st.ItemCategories = append(st.ItemCategories, store.ItemCategory{
		ID:     uuid.NewString(),
		Name:   name,
		Prefix: namePrefix(name),
	})
	return &st.ItemCategories[len(st.ItemCategories)-1]
}

func ensureAssetCategory(st *store.Store, name string) *store.AssetCategory {
	if name == "" {
		return nil
	}
	if c := st.FindAssetCategoryByName(name); c != nil {
		return c
	}
	st.AssetCategories = append(st.AssetCategories, store.AssetCategory{
		ID:     uuid.NewString(),
		Name:   name,
		Prefix: namePrefix(name),
	})
	return &st.AssetCategories[len(st.AssetCategories)-1]
}

func ensureUnit(st *store.Store, name string) *store.Unit {
	if name == "" {
		return nil
	}
	if u := st.FindUnitByName(name); u != nil {
		return u
	}
	st.Units = append(st.Units, store.Unit{ID: uuid.NewString(), Name: name})
	return &st.Units[len(st.Units)-1]
}

func namePrefix(name string) string {
	r := []rune(strings.ToUpper(name))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
