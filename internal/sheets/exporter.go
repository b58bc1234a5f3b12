package sheets

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/drajad/manajemen-toko/internal/domain/store"
)

// BuildWorkbook projects the store into flat, human-readable sheets. It has
// no side effects on the store.
//
// The items sheet emits stock as purchase-unit quotient, selling-unit
// remainder and combined total, and the purchase price in both units of
// account, so the file round-trips cleanly through Import whichever column
// generation a later editor keeps.
func BuildWorkbook(st *store.Store, scope Scope) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	write := func(name string, header []interface{}, rows [][]interface{}) error {
		if first {
			if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), name); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		for i, r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &r); err != nil {
				return err
			}
		}
		return nil
	}

	if scope == ScopeAll || scope == ScopeItems {
		header, rows := itemRows(st)
		if err := write(sheetItems, header, rows); err != nil {
			return nil, err
		}
	}
	if scope == ScopeAll || scope == ScopeAssets {
		header, rows := assetRows(st)
		if err := write(sheetAssets, header, rows); err != nil {
			return nil, err
		}
	}
	if scope == ScopeAll || scope == ScopeCosts {
		header, rows := costRows(st)
		if err := write(sheetCosts, header, rows); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename names the download after the store and selection.
func Filename(st *store.Store, scope Scope) string {
	switch scope {
	case ScopeItems:
		return fmt.Sprintf("%s-%s.xlsx", st.Name, sheetItems)
	case ScopeAssets:
		return fmt.Sprintf("%s-%s.xlsx", st.Name, sheetAssets)
	case ScopeCosts:
		return fmt.Sprintf("%s-%s.xlsx", st.Name, sheetCosts)
	}
	return fmt.Sprintf("%s-Semua Data.xlsx", st.Name)
}

func itemRows(st *store.Store) ([]interface{}, [][]interface{}) {
	header := []interface{}{
		"SKU",
		"Nama Barang",
		"Keterangan",
		"Kategori",
		"Satuan Pembelian",
		"Harga Beli per Satuan Pembelian",
		"Konversi",
		"Satuan Penjualan",
		"Harga Beli per Satuan Penjualan",
		"Harga Jual per Satuan Penjualan",
		"Stok (Satuan Pembelian)",
		"Stok Sisa (Satuan Penjualan)",
		"Total Stok (dlm Satuan Penjualan)",
	}

	catNames := make(map[string]string, len(st.ItemCategories))
	for _, c := range st.ItemCategories {
		catNames[c.ID] = c.Name
	}
	unitNames := make(map[string]string, len(st.Units))
	for _, u := range st.Units {
		unitNames[u.ID] = u.Name
	}

	var rows [][]interface{}
	for _, item := range st.Items {
		recorded := 0
		if inv := st.InventoryFor(item.ID); inv != nil {
			recorded = inv.RecordedStock
		}
		conv := item.ConversionRate
		if conv <= 0 {
			conv = 1
		}
		purchaseUnit := unitNames[item.PurchaseUnitID]
		sellingUnit := unitNames[item.SellingUnitID]

		konversi := "-"
		if item.PurchaseUnitID != item.SellingUnitID && item.ConversionRate > 1 {
			konversi = fmt.Sprintf("%d %s / %s", item.ConversionRate, sellingUnit, purchaseUnit)
		}

		rows = append(rows, []interface{}{
			item.SKU,
			item.Name,
			item.Description,
			catNames[item.CategoryID],
			purchaseUnit,
			item.PurchasePrice * float64(conv),
			konversi,
			sellingUnit,
			item.PurchasePrice,
			item.SellingPrice,
			recorded / conv,
			recorded % conv,
			recorded,
		})
	}
	return header, rows
}

func assetRows(st *store.Store) ([]interface{}, [][]interface{}) {
	header := []interface{}{
		"Kode", "Nama Aset", "Keterangan", "Kategori", "Kondisi", "Tgl Perolehan", "Nilai",
	}
	catNames := make(map[string]string, len(st.AssetCategories))
	for _, c := range st.AssetCategories {
		catNames[c.ID] = c.Name
	}
	var rows [][]interface{}
	for _, a := range st.Assets {
		rows = append(rows, []interface{}{
			a.Code, a.Name, a.Description, catNames[a.CategoryID],
			string(a.Condition), a.PurchaseDate, a.Value,
		})
	}
	return header, rows
}

func costRows(st *store.Store) ([]interface{}, [][]interface{}) {
	header := []interface{}{"Nama Biaya", "Keterangan", "Jumlah", "Frekuensi"}
	var rows [][]interface{}
	for _, c := range st.Costs {
		rows = append(rows, []interface{}{c.Name, c.Description, c.Amount, string(c.Frequency)})
	}
	return header, rows
}
