package models

import (
	"github.com/shopspring/decimal"

	"atm-reconciler/core/reconcile"
)

// Management workbook column headers. The store resolves them
// case-insensitively against the header row.
const (
	ColCashierCode   = "codigo_cajero"
	ColArqueoDate    = "fecha_arqueo"
	ColOverage       = "sobrantes"
	ColShortage      = "faltantes"
	ColJustification = "justificacion"
	ColStatus        = "nuevo_estado"
)

// LedgerMovement is one row of the national ledger movements table.
type LedgerMovement struct {
	// Nit is the cashier/ATM code the movement is booked against.
	Nit string `gorm:"column:nit"`

	// Fecha is the movement date as YYYYMMDD.
	Fecha int `gorm:"column:fecha"`

	// Valor is the booked amount. Shortages are positive, overages
	// negative.
	Valor decimal.Decimal `gorm:"column:valor;type:decimal(20,2)"`

	// Cuenta is the full account number the movement belongs to.
	Cuenta int64 `gorm:"column:cuenta"`

	// Codofi is the branch office code.
	Codofi int `gorm:"column:codofi"`

	// Nrocmp is the voucher number.
	Nrocmp int `gorm:"column:nrocmp"`

	// Numdoc is the document number, carried for reporting only.
	Numdoc string `gorm:"column:numdoc"`
}

// TableName sets the gorm table for ledger movements.
func (LedgerMovement) TableName() string {
	return "movements"
}

// ToMovement converts a ledger row to the engine's normalized form.
func (m LedgerMovement) ToMovement() reconcile.Movement {
	return reconcile.Movement{
		CashierCode: m.Nit,
		DateKey:     m.Fecha,
		Value:       m.Valor,
		Fields: map[string]string{
			"numdoc": m.Numdoc,
		},
	}
}
