package preset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
presets:
  - name: catalogo
    description: Weekly catalogue
    columns: [PLU, ID_MARCA, DESC_PLU, CONTENIDO]
    make_image_name: true
  - name: precios
    columns:
      - PLU
      - PRECIO_VENTA
`

func TestParse(t *testing.T) {
	set, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"catalogo", "precios"}, set.Names())

	p, err := set.Get("CATALOGO")
	require.NoError(t, err)
	assert.Equal(t, core.ProcessRequest{
		Columns:       []string{"PLU", "ID_MARCA", "DESC_PLU", "CONTENIDO"},
		MakeImageName: true,
	}, p.Request())

	p, err = set.Get("precios")
	require.NoError(t, err)
	assert.False(t, p.MakeImageName)

	_, err = set.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParse_Empty(t *testing.T) {
	set, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, set.Presets)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown key", "presets:\n  - name: a\n    colums: [PLU]\n", "colums"},
		{"bad yaml", "presets: [\n", "invalid preset YAML"},
		{"missing name", "presets:\n  - columns: [PLU]\n", "name is required"},
		{"duplicate name", "presets:\n  - name: a\n    columns: [PLU]\n  - name: A\n    columns: [PLU]\n", "duplicate name"},
		{"no columns", "presets:\n  - name: a\n", "no columns selected"},
		{"raw header", "presets:\n  - name: a\n    columns: [Precio Venta]\n", `did you mean "PRECIO_VENTA"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	set := &Set{Presets: []Preset{
		{Name: "", Columns: []string{"PLU"}},
		{Name: "b", Columns: []string{"plu"}},
	}}

	err := set.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), `column "plu" is not canonical`)
}

func TestLoadFileAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	set, err := LoadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, set))

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, set, again)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
