package core

import (
	"strings"
)

// ImageColumn is the name of the synthesized image-file column.
const ImageColumn = "IMAGEN"

// imageExtension is appended to every synthesized name.
const imageExtension = ".psd"

// pluWidth is the zero-padded width of the PLU segment.
const pluWidth = 6

// ImageNameFields are the canonical columns an image name is built from.
var ImageNameFields = []string{"PLU", "ID_MARCA", "DESC_PLU", "CONTENIDO"}

// SynthesizeImageName fills the IMAGEN column from PLU, ID_MARCA, DESC_PLU and
// CONTENIDO. When any of them is missing from t nothing happens and false is
// returned. An existing IMAGEN column is overwritten in place; otherwise the
// column is appended.
func SynthesizeImageName(t *Table) bool {
	idx := make([]int, len(ImageNameFields))
	for i, f := range ImageNameFields {
		idx[i] = t.ColumnIndex(f)
		if idx[i] < 0 {
			return false
		}
	}

	target := t.ColumnIndex(ImageColumn)
	if target < 0 {
		t.Columns = append(t.Columns, ImageColumn)
	}

	for r, row := range t.Rows {
		name := ImageName(row[idx[0]], row[idx[1]], row[idx[2]], row[idx[3]])
		if target < 0 {
			t.Rows[r] = append(row, name)
		} else {
			row[target] = name
		}
	}
	return true
}

// ImageName builds one image file name.
//
//	ImageName("123", "Marca Ñ", "Agua  Mineral", "500 ml")
//	// "000123_MARCA_N_AGUA_MINERAL_500_ML.psd"
func ImageName(plu, brand, description, content string) string {
	parts := []string{
		zeroPad(strings.TrimSpace(plu), pluWidth),
		imageSegment(brand),
		imageSegment(description),
		imageSegment(content),
	}
	return strings.Join(parts, "_") + imageExtension
}

// imageSegment folds diacritics, turns each whitespace run into one '_' and
// uppercases. Unlike NormalizeColumnName it keeps punctuation.
func imageSegment(s string) string {
	s = FoldDiacritics(s)
	return strings.ToUpper(strings.Join(strings.Fields(s), "_"))
}

// zeroPad left-pads s with '0' up to width, keeping a leading sign in front.
func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	return sign + strings.Repeat("0", width-len(sign)-len(s)) + s
}
