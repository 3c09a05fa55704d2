package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testRecord(overage, shortage int64) DiscrepancyRecord {
	return DiscrepancyRecord{
		RowID:       1,
		CashierCode: "CAJ001",
		ArqueoDate:  time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC),
		Overage:     decimal.NewFromInt(overage),
		Shortage:    decimal.NewFromInt(shortage),
		Status:      StatusPending,
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name              string
		overage           int64
		shortage          int64
		wantJustification string
		wantStatus        string
		wantErr           bool
	}{
		{
			name:              "overage yields accounting overage pair",
			overage:           50000,
			wantJustification: "SOBRANTE CONTABLE",
			wantStatus:        "SOBRANTE CONTABLE",
		},
		{
			name:              "shortage yields physical pair",
			shortage:          20000,
			wantJustification: "Fisico",
			wantStatus:        "FALTANTE EN ARQUEO",
		},
		{
			name:    "both zero is a contract violation",
			wantErr: true,
		},
		{
			name:     "both positive is a contract violation",
			overage:  1000,
			shortage: 1000,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disposition, err := Resolve(testRecord(tt.overage, tt.shortage))
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantJustification, disposition.Justification)
			assert.Equal(t, tt.wantStatus, disposition.Status)
		})
	}
}

func TestRecordValidate(t *testing.T) {
	rec := testRecord(50000, 0)
	assert.NoError(t, rec.Validate())

	rec.CashierCode = ""
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)

	rec = testRecord(50000, 0)
	rec.ArqueoDate = time.Time{}
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)

	rec = testRecord(0, 0)
	rec.Shortage = decimal.NewFromInt(-100)
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)
}
