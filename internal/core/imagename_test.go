package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageName(t *testing.T) {
	tests := []struct {
		name                      string
		plu, brand, desc, content string
		want                      string
	}{
		{"reference row", "123", "Marca Ñ", "Agua  Mineral", "500 ml", "000123_MARCA_N_AGUA_MINERAL_500_ML.psd"},
		{"long plu untouched", "1234567", "x", "y", "z", "1234567_X_Y_Z.psd"},
		{"exact width", "123456", "a", "b", "c", "123456_A_B_C.psd"},
		{"punctuation kept", "7", "Café Andino", "Café Molido (Tostado)", "250 g.", "000007_CAFE_ANDINO_CAFE_MOLIDO_(TOSTADO)_250_G..psd"},
		{"surrounding space trimmed", " 45 ", " Lácteos Sur ", "Leche\tEntera", "1 L", "000045_LACTEOS_SUR_LECHE_ENTERA_1_L.psd"},
		{"empty fields", "", "", "", "", "000000___.psd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageName(tt.plu, tt.brand, tt.desc, tt.content))
		})
	}
}

func TestZeroPad(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "000001"},
		{"", "000000"},
		{"-12", "-00012"},
		{"+7", "+00007"},
		{"abc", "000abc"},
		{"1234567", "1234567"},
	}

	for _, tt := range tests {
		if got := zeroPad(tt.in, 6); got != tt.want {
			t.Errorf("zeroPad(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func imageTable() *Table {
	return &Table{
		Columns: []string{"PLU", "ID_MARCA", "DESC_PLU", "CONTENIDO"},
		Rows: [][]string{
			{"123", "Marca Ñ", "Agua  Mineral", "500 ml"},
			{"45", "Lácteos Sur", "Leche Entera", "1 L"},
		},
	}
}

func TestSynthesizeImageName_Appends(t *testing.T) {
	table := imageTable()

	assert.True(t, SynthesizeImageName(table))
	assert.Equal(t, []string{"PLU", "ID_MARCA", "DESC_PLU", "CONTENIDO", "IMAGEN"}, table.Columns)
	assert.Equal(t, "000123_MARCA_N_AGUA_MINERAL_500_ML.psd", table.Rows[0][4])
	assert.Equal(t, "000045_LACTEOS_SUR_LECHE_ENTERA_1_L.psd", table.Rows[1][4])
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns))
	}
}

func TestSynthesizeImageName_OverwritesExisting(t *testing.T) {
	table := &Table{
		Columns: []string{"IMAGEN", "PLU", "ID_MARCA", "DESC_PLU", "CONTENIDO"},
		Rows:    [][]string{{"old.psd", "9", "M", "D", "C"}},
	}

	assert.True(t, SynthesizeImageName(table))
	assert.Equal(t, []string{"IMAGEN", "PLU", "ID_MARCA", "DESC_PLU", "CONTENIDO"}, table.Columns)
	assert.Equal(t, [][]string{{"000009_M_D_C.psd", "9", "M", "D", "C"}}, table.Rows)
}

func TestSynthesizeImageName_SkippedWhenFieldMissing(t *testing.T) {
	for _, drop := range ImageNameFields {
		t.Run(drop, func(t *testing.T) {
			table := imageTable()
			i := table.ColumnIndex(drop)
			table.Columns = append(table.Columns[:i:i], table.Columns[i+1:]...)
			for r, row := range table.Rows {
				table.Rows[r] = append(row[:i:i], row[i+1:]...)
			}
			before := len(table.Columns)

			assert.False(t, SynthesizeImageName(table))
			assert.Len(t, table.Columns, before)
			assert.Equal(t, -1, table.ColumnIndex(ImageColumn))
		})
	}
}
