package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Expense TxType = "Gasto"
	Income  TxType = "Ingreso"

	// DefaultCategory is used whenever a message names no category.
	DefaultCategory = "General"
	// MethodUnspecified is stored when no payment method is recognised.
	MethodUnspecified = "No especificado"

	// DateLayout is the zero-padded ISO layout used for storage and comparisons.
	DateLayout = "2006-01-02"
)

type (
	TxType string

	// Record is one transaction derived from one inbound message.
	Record struct {
		Date        time.Time
		Type        TxType
		Amount      int64 // whole pesos, no subunits
		Category    string
		Method      string
		Description string
		Sender      string
	}
)

var (
	ErrAmountNotFound    = errors.New("amount not found")
	ErrTypeNotRecognized = errors.New("transaction type not recognized")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrLedgerWrite       = errors.New("ledger write failed")
	ErrEmptyCategory     = errors.New("empty category")
)

// ParseTxType maps a free-text type field ("gasto", "Ingresos", ...) onto a TxType.
func ParseTxType(s string) (TxType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "gast"):
		return Expense, nil
	case strings.HasPrefix(s, "ingres"):
		return Income, nil
	}
	return "", ErrTypeNotRecognized
}

// Plural returns the lowercase plural used in replies ("gastos", "ingresos").
func (t TxType) Plural() string {
	return strings.ToLower(string(t)) + "s"
}

func (t TxType) Valid() bool {
	return t == Expense || t == Income
}

func (r Record) Validate() error {
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if !r.Type.Valid() {
		return ErrTypeNotRecognized
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// DateString formats the record date in DateLayout.
func (r Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// Row converts the record into its ledger row representation.
func (r Record) Row() Row {
	return Row{
		ColDate:        r.DateString(),
		ColType:        string(r.Type),
		ColAmount:      strconv.FormatInt(r.Amount, 10),
		ColCategory:    r.Category,
		ColMethod:      r.Method,
		ColDescription: r.Description,
		ColSender:      r.Sender,
	}
}
