package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rfrancav/vendalytics/internal/schema"
)

const sampleCSV = `pedido_id,data_pedido,cliente_id,produto,categoria,quantidade,preco_unitario,valor_total,estado,canal_venda
PED1,2024-03-01,100,Notebook,Notebooks,1,2500.00,2500.00,SP,Online
PED2,2024-03-02,200,Mouse,Periféricos,2,150.00,300.00,RJ,Marketplace
`

func TestFromCSV(t *testing.T) {
	table, err := FromCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	require.Equal(t, "PED1", table.Cell(schema.ColOrderID, 0))
	require.Equal(t, "300.00", table.Cell(schema.ColTotalValue, 1))
}

func TestFromCSV_ShortRowsPadded(t *testing.T) {
	in := "pedido_id,produto,estado\nPED1,Notebook\n"
	table, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	require.Equal(t, "Notebook", table.Cell(schema.ColProduct, 0))
	require.Equal(t, "", table.Cell(schema.ColState, 0))
}

func TestFromCSV_Empty(t *testing.T) {
	_, err := FromCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedidos.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	table, err := Read(path, "")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read("pedidos.json", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported format")
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != f.GetSheetName(0) {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "pedidos.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"pedido_id", "data_pedido", "cliente_id", "produto", "quantidade", "preco_unitario"},
		{"PED1", "2024-03-01", "100", "Notebook", "1", "2500.00"},
		{"PED2", "2024-03-02", "200", "Mouse", "2", "150.00"},
	})

	table, err := ReadXLSX(path, "")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	require.Equal(t, "Mouse", table.Cell(schema.ColProduct, 1))
}

func TestReadXLSX_LeadingEmptyRowSkipped(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"", ""},
		{"pedido_id", "produto"},
		{"PED1", "Notebook"},
	})

	table, err := ReadXLSX(path, "")
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	require.Equal(t, "PED1", table.Cell(schema.ColOrderID, 0))
}

func TestReadXLSX_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{{"pedido_id"}})
	_, err := ReadXLSX(path, "Vendas")
	require.Error(t, err)
}

func TestTableFromRows_DuplicateAndBlankHeaders(t *testing.T) {
	table := tableFromRows(
		[]string{"Pedido_ID", "", "produto"},
		[][]string{{"PED1", "x", "Notebook"}},
	)
	require.Equal(t, "PED1", table.Cell(schema.ColOrderID, 0))
	require.Equal(t, "Notebook", table.Cell(schema.ColProduct, 0))
	_, blank := table[""]
	require.False(t, blank)
}
