package sheets

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/drajad/manajemen-toko/internal/domain/store"
)

type sheetDef struct {
	name string
	rows [][]string
}

func buildWorkbook(t *testing.T, defs ...sheetDef) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, def := range defs {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), def.name); err != nil {
				t.Fatal(err)
			}
		} else if _, err := f.NewSheet(def.name); err != nil {
			t.Fatal(err)
		}
		for r, cells := range def.rows {
			row := make([]interface{}, len(cells))
			for c, v := range cells {
				row[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(def.name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func emptyStore() *store.Store {
	return store.New("toko-1", "Toko Maju", "")
}

func TestImportStockThreeTierConvergence(t *testing.T) {
	cases := []struct {
		name string
		rows [][]string
	}{
		{
			"combined total column",
			[][]string{
				{"Nama Barang", "Isi Konversi", "Total Stok (dlm Satuan Penjualan)"},
				{"Gula", "12", "130"},
			},
		},
		{
			"purchase plus remainder columns",
			[][]string{
				{"Nama Barang", "Isi Konversi", "Stok (Satuan Pembelian)", "Stok Sisa (Satuan Penjualan)"},
				{"Gula", "12", "10", "10"},
			},
		},
		{
			"legacy recorded column",
			[][]string{
				{"Nama Barang", "Isi Konversi", "Stok Tercatat (Satuan Jual)"},
				{"Gula", "12", "130"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := buildWorkbook(t, sheetDef{name: "Barang", rows: tc.rows})
			st, sum, err := Import(emptyStore(), data, ScopeItems)
			if err != nil {
				t.Fatal(err)
			}
			if sum.Added != 1 {
				t.Fatalf("added = %d, want 1", sum.Added)
			}
			item := st.FindItemByName("Gula")
			if item == nil {
				t.Fatal("Gula not imported")
			}
			inv := st.InventoryFor(item.ID)
			if inv == nil || inv.RecordedStock != 130 {
				t.Fatalf("recordedStock = %+v, want 130", inv)
			}
		})
	}
}

func TestImportStockAbsentPreservesExisting(t *testing.T) {
	src := emptyStore()
	src.Items = append(src.Items, store.Item{ID: "item-gula", SKU: "BRG-001", Name: "Gula", ConversionRate: 12})
	src.Inventory = append(src.Inventory, store.Inventory{ItemID: "item-gula", RecordedStock: 77})

	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Harga Jual"},
		{"Gula", "1500"},
	}})
	st, sum, err := Import(src, data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Updated != 1 || sum.Added != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if got := st.InventoryFor("item-gula").RecordedStock; got != 77 {
		t.Fatalf("stock zeroed to %d, want preserved 77", got)
	}
}

func TestImportPurchasePricePriority(t *testing.T) {
	// price per selling unit wins when present and > 0
	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Isi Konversi", "Harga Beli per Satuan Pembelian", "Harga Beli per Satuan Penjualan"},
		{"Gula", "12", "99999", "1000"},
	}})
	st, _, err := Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if got := st.FindItemByName("Gula").PurchasePrice; got != 1000 {
		t.Fatalf("purchasePrice = %v, want 1000", got)
	}

	// otherwise the per-purchase-unit price is divided by the conversion rate
	data = buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Isi Konversi", "Harga Beli per Satuan Pembelian"},
		{"Gula", "12", "12000"},
	}})
	st, _, err = Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if got := st.FindItemByName("Gula").PurchasePrice; got != 1000 {
		t.Fatalf("derived purchasePrice = %v, want 12000/12 = 1000", got)
	}
}

func TestImportCategoryAutoCreateDedup(t *testing.T) {
	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Kategori"},
		{"Teh Botol", "Minuman"},
		{"Kopi Sachet", "minuman"},
	}})
	st, sum, err := Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Added != 2 {
		t.Fatalf("added = %d, want 2", sum.Added)
	}
	if len(st.ItemCategories) != 1 {
		t.Fatalf("categories = %d, want exactly 1", len(st.ItemCategories))
	}
	cat := st.ItemCategories[0]
	if cat.Name != "Minuman" || cat.Prefix != "MIN" {
		t.Fatalf("category = %+v", cat)
	}
	for _, name := range []string{"Teh Botol", "Kopi Sachet"} {
		if st.FindItemByName(name).CategoryID != cat.ID {
			t.Errorf("%s not linked to the shared category", name)
		}
	}
}

func TestImportMatchesExistingItemByName(t *testing.T) {
	src := emptyStore()
	src.Items = append(src.Items, store.Item{ID: "item-gula", SKU: "BRG-001", Name: "Gula", ConversionRate: 1})
	src.Inventory = append(src.Inventory, store.Inventory{ItemID: "item-gula", RecordedStock: 10})

	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Keterangan", "Total Stok (dlm Satuan Penjualan)"},
		{"  gula  ", "pasir halus", "42"},
	}})
	st, sum, err := Import(src, data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Added != 0 || sum.Updated != 1 {
		t.Fatalf("summary = %+v, want update-in-place", sum)
	}
	if len(st.Items) != 1 {
		t.Fatalf("duplicate item created, have %d", len(st.Items))
	}
	item := st.Items[0]
	if item.ID != "item-gula" || item.SKU != "BRG-001" {
		t.Fatalf("id/sku not preserved: %+v", item)
	}
	if item.Description != "pasir halus" {
		t.Errorf("description not merged: %q", item.Description)
	}
	if got := st.InventoryFor("item-gula").RecordedStock; got != 42 {
		t.Errorf("stock = %d, want 42", got)
	}
}

func TestImportSingleUnitCollapses(t *testing.T) {
	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Satuan Penjualan"},
		{"Gula", "pcs"},
	}})
	st, _, err := Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	item := st.FindItemByName("Gula")
	if item.PurchaseUnitID == "" || item.PurchaseUnitID != item.SellingUnitID {
		t.Fatalf("units did not collapse to the single named one: %+v", item)
	}
	if len(st.Units) != 1 {
		t.Fatalf("units = %d, want 1", len(st.Units))
	}
}

func TestImportConversionRateFloorsInvalid(t *testing.T) {
	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Isi Konversi"},
		{"Gula", "0"},
		{"Kopi", "bukan angka"},
		{"Beras", "-3"},
	}})
	st, _, err := Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Gula", "Kopi", "Beras"} {
		if got := st.FindItemByName(name).ConversionRate; got != 1 {
			t.Errorf("%s: conversionRate = %d, want floored 1", name, got)
		}
	}
}

func TestImportSkipsBlankNameRows(t *testing.T) {
	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Kategori"},
		{"", "Minuman"},
		{"   ", ""},
		{"Gula", ""},
	}})
	st, sum, err := Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Added != 1 || len(st.Items) != 1 {
		t.Fatalf("blank rows slipped in: %+v, %d items", sum, len(st.Items))
	}
	// the skipped row's category must not be created either
	if len(st.ItemCategories) != 0 {
		t.Fatalf("category created from a skipped row")
	}
}

func TestImportAssets(t *testing.T) {
	src := emptyStore()
	src.Assets = append(src.Assets, store.Asset{
		ID: "asset-1", Code: "ETL-001", Name: "Etalase", Condition: store.ConditionBagus,
	})

	data := buildWorkbook(t, sheetDef{name: "Aset", rows: [][]string{
		{"Kode", "Nama Aset", "Kondisi", "Tgl Perolehan", "Nilai"},
		{"ETL-001", "Etalase Kaca", "rusak", "2023-05-01", "2500000"},
		{"", "Kulkas", "membingungkan", "", "4.000.000"},
	}})
	st, sum, err := Import(src, data, ScopeAssets)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Updated != 1 || sum.Added != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	etalase := st.FindAssetByCode("ETL-001")
	if etalase.ID != "asset-1" {
		t.Fatal("existing asset not matched by code")
	}
	if etalase.Condition != store.ConditionRusak {
		t.Errorf("condition = %s, want case-insensitive Rusak", etalase.Condition)
	}
	if etalase.PurchaseDate != "2023-05-01" {
		t.Errorf("purchaseDate = %q", etalase.PurchaseDate)
	}

	var kulkas *store.Asset
	for i := range st.Assets {
		if st.Assets[i].Name == "Kulkas" {
			kulkas = &st.Assets[i]
		}
	}
	if kulkas == nil {
		t.Fatal("new asset not created")
	}
	if kulkas.Condition != store.ConditionNormal {
		t.Errorf("unrecognized condition should default to Normal, got %s", kulkas.Condition)
	}
	if kulkas.PurchaseDate != time.Now().Format("2006-01-02") {
		t.Errorf("blank date should default to today, got %q", kulkas.PurchaseDate)
	}
	if kulkas.Code == "" {
		t.Error("auto code not generated")
	}
}

func TestImportCosts(t *testing.T) {
	src := emptyStore()
	src.Costs = append(src.Costs, store.OperationalCost{
		ID: "cost-1", Name: "Listrik", Amount: 100000, Frequency: store.FreqBulanan,
	})

	data := buildWorkbook(t, sheetDef{name: "Biaya", rows: [][]string{
		{"Nama Biaya", "Jumlah", "Frekuensi"},
		{"LISTRIK", "150000", "Tahunan"},
		{"Air", "50000", ""},
	}})
	st, sum, err := Import(src, data, ScopeCosts)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Updated != 1 || sum.Added != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	listrik := st.FindCostByName("Listrik")
	if listrik.ID != "cost-1" || listrik.Amount != 150000 || listrik.Frequency != store.FreqTahunan {
		t.Fatalf("cost not merged: %+v", listrik)
	}
	if st.FindCostByName("Air").Frequency != store.FreqBulanan {
		t.Error("blank frequency should default to bulanan")
	}
}

func TestImportAllScopesBySheetName(t *testing.T) {
	data := buildWorkbook(t,
		sheetDef{name: "Master Barang", rows: [][]string{{"Nama Barang"}, {"Gula"}}},
		sheetDef{name: "Daftar Aset", rows: [][]string{{"Kode", "Nama Aset"}, {"A-1", "Etalase"}}},
		sheetDef{name: "Biaya Operasional", rows: [][]string{{"Nama Biaya"}, {"Listrik"}}},
		sheetDef{name: "Catatan", rows: [][]string{{"apapun"}, {"diabaikan"}}},
	)
	st, sum, err := Import(emptyStore(), data, ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Added != 3 {
		t.Fatalf("added = %d, want 3 (unrecognized sheet skipped)", sum.Added)
	}
	if len(st.Items) != 1 || len(st.Assets) != 1 || len(st.Costs) != 1 {
		t.Fatalf("sheet routing wrong: %d/%d/%d", len(st.Items), len(st.Assets), len(st.Costs))
	}
}

func TestImportScopeSheetNotFound(t *testing.T) {
	data := buildWorkbook(t, sheetDef{name: "Aset", rows: [][]string{{"Kode"}, {"A-1"}}})
	_, _, err := Import(emptyStore(), data, ScopeItems)
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestImportCorruptWorkbook(t *testing.T) {
	src := emptyStore()
	_, _, err := Import(src, []byte("bukan file xlsx"), ScopeAll)
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestImportNeverMutatesSource(t *testing.T) {
	src := emptyStore()
	src.Items = append(src.Items, store.Item{ID: "item-gula", Name: "Gula", ConversionRate: 2})
	src.Inventory = append(src.Inventory, store.Inventory{ItemID: "item-gula", RecordedStock: 5})

	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Total Stok (dlm Satuan Penjualan)"},
		{"Gula", "999"},
		{"Baru", "1"},
	}})
	if _, _, err := Import(src, data, ScopeItems); err != nil {
		t.Fatal(err)
	}
	if len(src.Items) != 1 || src.InventoryFor("item-gula").RecordedStock != 5 {
		t.Fatal("Import mutated the source store")
	}
}

func TestImportLastRowWinsWithinBatch(t *testing.T) {
	data := buildWorkbook(t, sheetDef{name: "Barang", rows: [][]string{
		{"Nama Barang", "Total Stok (dlm Satuan Penjualan)"},
		{"Gula", "10"},
		{"Gula", "20"},
	}})
	st, sum, err := Import(emptyStore(), data, ScopeItems)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Added != 1 || sum.Updated != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	item := st.FindItemByName("Gula")
	if got := st.InventoryFor(item.ID).RecordedStock; got != 20 {
		t.Fatalf("stock = %d, want last-in-batch 20", got)
	}
}
