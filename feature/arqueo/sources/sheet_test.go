package sources

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"atm-reconciler/core/reconcile"
)

// writeSheet writes a single-sheet workbook fixture and returns its path.
func writeSheet(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func fallbackSpec(source reconcile.Source, kind reconcile.SourceKind) reconcile.SourceSpec {
	return reconcile.SourceSpec{
		Name:   "sobrantes-sucursales",
		Kind:   kind,
		Source: source,
		Fields: reconcile.FieldMap{Identifier: "CODIGO", Date: "FECHA", Value: "NUEVO VALOR"},
	}
}

func TestFallbackSheetQuery(t *testing.T) {
	path := writeSheet(t, "SOBRANTE", [][]interface{}{
		{"CODIGO", "NUEVO VALOR", "OBSERVACION"},
		{"CAJ001", "$ 1.234.567,89", "consignacion pendiente"},
		{"CAJ002", "50000", ""},
	})

	source := NewFallbackSheet(path, "SOBRANTE", 0, nil)
	spec := fallbackSpec(source, reconcile.SourceFallbackPrimary)
	query := reconcile.MovementQuery{CashierCode: "CAJ001", DateKey: 20251128, Amount: decimal.NewFromInt(1234567)}

	movements, err := source.Query(context.Background(), spec, query)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "CAJ001", movements[0].CashierCode)
	assert.True(t, movements[0].Value.Equal(decimal.RequireFromString("1234567.89")))
	assert.Equal(t, "consignacion pendiente", movements[0].Fields["observacion"])
}

func TestFallbackSheetQuery_HeaderVariants(t *testing.T) {
	// Historic tabs renamed the identifier and value columns over time; the
	// configured names are not present here.
	path := writeSheet(t, "HISTORICO", [][]interface{}{
		{"COD. CAJERO", "VALOR SOBRANTE"},
		{"CAJ009", "75000"},
	})

	source := NewFallbackSheet(path, "HISTORICO", 0, nil)
	spec := fallbackSpec(source, reconcile.SourceFallbackHistoric)
	query := reconcile.MovementQuery{CashierCode: "CAJ009", DateKey: 20251128, Amount: decimal.NewFromInt(75000)}

	movements, err := source.Query(context.Background(), spec, query)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Value.Equal(decimal.NewFromInt(75000)))
}

func TestFallbackSheetQuery_DateNarrowsWhenPresent(t *testing.T) {
	path := writeSheet(t, "SOBRANTE", [][]interface{}{
		{"CODIGO", "FECHA", "VALOR"},
		{"CAJ001", "2025-11-28", "10000"},
		{"CAJ001", "2025-11-20", "20000"},
		{"CAJ001", "", "30000"}, // no date, still a candidate
	})

	source := NewFallbackSheet(path, "SOBRANTE", 0, nil)
	spec := fallbackSpec(source, reconcile.SourceFallbackPrimary)
	query := reconcile.MovementQuery{CashierCode: "CAJ001", DateKey: 20251128, Amount: decimal.NewFromInt(10000)}

	movements, err := source.Query(context.Background(), spec, query)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.True(t, movements[0].Value.Equal(decimal.NewFromInt(10000)))
	assert.True(t, movements[1].Value.Equal(decimal.NewFromInt(30000)))
}

func TestFallbackSheetQuery_MissingFileIsSoft(t *testing.T) {
	source := NewFallbackSheet(filepath.Join(t.TempDir(), "nope.xlsx"), "SOBRANTE", 0, nil)
	spec := fallbackSpec(source, reconcile.SourceFallbackPrimary)

	_, err := source.Query(context.Background(), spec, reconcile.MovementQuery{CashierCode: "CAJ001", DateKey: 20251128})
	assert.True(t, errors.Is(err, reconcile.ErrSourceUnavailable))
}

func TestFallbackSheetQuery_NoIdentifierColumnIsSoft(t *testing.T) {
	path := writeSheet(t, "SOBRANTE", [][]interface{}{
		{"SUCURSAL", "MONTO"},
		{"norte", "10000"},
	})

	source := NewFallbackSheet(path, "SOBRANTE", 0, nil)
	spec := fallbackSpec(source, reconcile.SourceFallbackPrimary)

	_, err := source.Query(context.Background(), spec, reconcile.MovementQuery{CashierCode: "CAJ001", DateKey: 20251128})
	assert.True(t, errors.Is(err, reconcile.ErrSourceUnavailable))
}

func TestLedgerFileQuery(t *testing.T) {
	path := writeSheet(t, "MOVIMIENTOS", [][]interface{}{
		{"NIT", "FECHA", "VALOR"},
		{"CAJ001", "20251128", "-50000"},
		{"CAJ001", "20251127", "-80000"}, // wrong date
		{"CAJ002", "20251128", "-50000"}, // wrong cashier
	})

	source := NewLedgerFile(path, "MOVIMIENTOS", 0, nil)
	spec := reconcile.SourceSpec{
		Name:   "ledger-extract",
		Kind:   reconcile.SourceLedgerFile,
		Source: source,
		Fields: reconcile.FieldMap{Identifier: "NIT", Date: "FECHA", Value: "VALOR"},
	}
	query := reconcile.MovementQuery{CashierCode: "CAJ001", DateKey: 20251128, Amount: decimal.NewFromInt(50000)}

	movements, err := source.Query(context.Background(), spec, query)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 20251128, movements[0].DateKey)
	assert.True(t, movements[0].Value.Equal(decimal.NewFromInt(-50000)))
}

func TestLedgerFileQuery_MissingColumnsIsSoft(t *testing.T) {
	path := writeSheet(t, "MOVIMIENTOS", [][]interface{}{
		{"NIT", "VALOR"},
		{"CAJ001", "-50000"},
	})

	source := NewLedgerFile(path, "MOVIMIENTOS", 0, nil)
	spec := reconcile.SourceSpec{
		Name:   "ledger-extract",
		Kind:   reconcile.SourceLedgerFile,
		Source: source,
		Fields: reconcile.FieldMap{Identifier: "NIT", Date: "FECHA", Value: "VALOR"},
	}

	_, err := source.Query(context.Background(), spec, reconcile.MovementQuery{CashierCode: "CAJ001", DateKey: 20251128})
	assert.True(t, errors.Is(err, reconcile.ErrSourceUnavailable))
}

func TestTableCache(t *testing.T) {
	path := writeSheet(t, "SOBRANTE", [][]interface{}{
		{"CODIGO", "VALOR"},
		{"CAJ001", "10000"},
	})

	first, err := loadTable(path, "SOBRANTE", 10*time.Minute)
	require.NoError(t, err)
	second, err := loadTable(path, "SOBRANTE", 10*time.Minute)
	require.NoError(t, err)
	assert.Same(t, first, second)

	InvalidateTable(path, "SOBRANTE")
	third, err := loadTable(path, "SOBRANTE", 10*time.Minute)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestTableCache_ZeroTTLDisablesCaching(t *testing.T) {
	path := writeSheet(t, "SOBRANTE", [][]interface{}{
		{"CODIGO", "VALOR"},
		{"CAJ001", "10000"},
	})

	first, err := loadTable(path, "SOBRANTE", 0)
	require.NoError(t, err)
	second, err := loadTable(path, "SOBRANTE", 0)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
