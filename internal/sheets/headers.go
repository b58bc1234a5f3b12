package sheets

import "strings"

// The spreadsheets this system exchanges have been through several export
// format generations, each with its own column names. Every logical field
// carries an ordered list of accepted header aliases; the first alias found
// in the header row wins. The lists are resolved once per sheet into a
// field -> column-index map before row iteration starts.

type field int

const (
	fieldSKU field = iota
	fieldItemName
	fieldDescription
	fieldCategory
	fieldPurchaseUnit
	fieldSellingUnit
	fieldConversion
	fieldPricePerPurchaseUnit
	fieldPricePerSellingUnit
	fieldSellingPrice
	fieldStockPurchaseUnits
	fieldStockRemainder
	fieldStockTotal
	fieldStockLegacy

	fieldAssetCode
	fieldAssetName
	fieldCondition
	fieldPurchaseDate
	fieldValue

	fieldCostName
	fieldAmount
	fieldFrequency
)

var itemAliases = map[field][]string{
	fieldSKU:          {"SKU"},
	fieldItemName:     {"Nama Barang"},
	fieldDescription:  {"Keterangan"},
	fieldCategory:     {"Kategori"},
	fieldPurchaseUnit: {"Satuan Beli", "Satuan Pembelian"},
	fieldSellingUnit:  {"Satuan Jual", "Satuan Penjualan"},
	fieldConversion:   {"Isi Konversi", "Konversi"},
	fieldPricePerPurchaseUnit: {
		"Harga Beli (Satuan Beli)",
		"Harga Beli per Satuan Beli",
		"Harga Beli per Satuan Pembelian",
	},
	fieldPricePerSellingUnit: {
		"Harga Beli (Satuan Jual)",
		"Harga Beli per Satuan Jual",
		"Harga Beli per Satuan Penjualan",
	},
	fieldSellingPrice:       {"Harga Jual", "Harga Jual per Satuan Penjualan"},
	fieldStockPurchaseUnits: {"Stok (Satuan Beli)", "Stok (Satuan Pembelian)"},
	fieldStockRemainder:     {"Sisa Stok (Satuan Jual)", "Stok Sisa (Satuan Penjualan)"},
	fieldStockTotal:         {"Total Stok (dalam Satuan Jual)", "Total Stok (dlm Satuan Penjualan)"},
	fieldStockLegacy:        {"Stok Tercatat (Satuan Jual)"},
}

var assetAliases = map[field][]string{
	fieldAssetCode:    {"Kode"},
	fieldAssetName:    {"Nama Aset"},
	fieldDescription:  {"Keterangan"},
	fieldCategory:     {"Kategori"},
	fieldCondition:    {"Kondisi"},
	fieldPurchaseDate: {"Tgl Perolehan"},
	fieldValue:        {"Nilai"},
}

var costAliases = map[field][]string{
	fieldCostName:    {"Nama Biaya"},
	fieldDescription: {"Keterangan"},
	fieldAmount:      {"Jumlah"},
	fieldFrequency:   {"Frekuensi"},
}

type columnMap map[field]int

func resolveColumns(header []string, aliases map[field][]string) columnMap {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}
	cm := columnMap{}
	for f, names := range aliases {
		for _, name := range names {
			for i, h := range norm {
				if h == strings.ToLower(name) {
					cm[f] = i
					break
				}
			}
			if _, ok := cm[f]; ok {
				break
			}
		}
	}
	return cm
}

// cell returns the trimmed value of a field in a row, and whether the row has
// a non-blank value there. Unknown columns and short rows read as absent.
func (cm columnMap) cell(row []string, f field) (string, bool) {
	i, ok := cm[f]
	if !ok || i >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[i])
	return v, v != ""
}
