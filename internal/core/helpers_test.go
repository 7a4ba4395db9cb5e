package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeXLSX creates a single-sheet workbook with rows starting at A1.
func writeXLSX(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// productsCSV is a small catalogue export used across tests.
const productsCSV = `PLU,Id Marca,Descripción PLU,Contenido,Precio Venta,PRECIO_VENTA
123,Marca Ñ,Agua  Mineral,500 ml,1.50,9.99
45,Lácteos Sur,Leche Entera,1 L,0.99,8.88
7,Café Andino,Café Molido,250 g,4.25,7.77
`
