package sheets

import "testing"

func TestResolveColumnsAliasOrder(t *testing.T) {
	// both generations present: the first alias in the list wins
	header := []string{"Nama Barang", "Konversi", "Isi Konversi"}
	cm := resolveColumns(header, itemAliases)
	if cm[fieldConversion] != 2 {
		t.Fatalf("conversion column = %d, want 2 (Isi Konversi)", cm[fieldConversion])
	}

	// older generation alone still resolves
	cm = resolveColumns([]string{"Nama Barang", "Konversi"}, itemAliases)
	if cm[fieldConversion] != 1 {
		t.Fatalf("conversion column = %d, want 1", cm[fieldConversion])
	}
}

func TestResolveColumnsCaseAndSpace(t *testing.T) {
	cm := resolveColumns([]string{"  nama barang ", "KATEGORI"}, itemAliases)
	if cm[fieldItemName] != 0 || cm[fieldCategory] != 1 {
		t.Fatalf("cm = %v", cm)
	}
	if _, ok := cm[fieldSKU]; ok {
		t.Fatal("absent column must not resolve")
	}
}

func TestCellReadsBeyondShortRows(t *testing.T) {
	cm := resolveColumns([]string{"Nama Barang", "Kategori"}, itemAliases)
	if _, ok := cm.cell([]string{"Gula"}, fieldCategory); ok {
		t.Fatal("short row should read as absent")
	}
	v, ok := cm.cell([]string{" Gula "}, fieldItemName)
	if !ok || v != "Gula" {
		t.Fatalf("cell = %q, %v", v, ok)
	}
}

func TestParseLeadingNumbers(t *testing.T) {
	if n, ok := parseLeadingInt("12 pcs / dus"); !ok || n != 12 {
		t.Errorf("parseLeadingInt = %d, %v", n, ok)
	}
	if _, ok := parseLeadingInt("dus 12"); ok {
		t.Error("non-numeric prefix must not parse")
	}
	if f, ok := parseLeadingFloat("1500,50"); !ok || f != 1500.5 {
		t.Errorf("comma decimal = %v, %v", f, ok)
	}
	if got := floatOr("", 0); got != 0 {
		t.Errorf("blank = %v", got)
	}
	if got := conversionRate("-4"); got != 1 {
		t.Errorf("negative conversion = %d, want 1", got)
	}
}
