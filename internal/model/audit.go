package model

import (
	"encoding/json"
	"time"
)

// Audit worksheet columns, in write order.
const (
	ColSelectionLabel = "Selection Label"
	ColSelectedRange  = "Selected Range"
	ColRangeStart     = "Range Start"
	ColRangeEnd       = "Range End"
	ColTimestamp      = "Timestamp"
)

// AuditDateLayout is the date-only format of the Timestamp column.
const AuditDateLayout = "2006-01-02"

// AuditHeader returns the fixed header row of the audit worksheet.
func AuditHeader() []string {
	return []string{
		ColMappedType, ColMappedProduct, ColChannel,
		ColSelectionLabel, ColSelectedRange, ColRangeStart, ColRangeEnd, ColTimestamp,
	}
}

// AuditKey identifies a submission for duplicate detection.
type AuditKey struct {
	Key
	SelectionLabel string `json:"selection_label"`
}

// AuditRecord is one persisted submission.
type AuditRecord struct {
	Key       Key       `json:"key"`
	Selection Selection `json:"selection"`
	Date      time.Time `json:"date"`
}

// AuditKey returns the duplicate-detection key of the record.
func (a AuditRecord) AuditKey() AuditKey {
	return AuditKey{Key: a.Key, SelectionLabel: a.Selection.Code}
}

// Row renders the record in AuditHeader order. Amounts are emitted as numbers;
// Range End is an empty string for manual entries.
func (a AuditRecord) Row() []any {
	var end any = ""
	if a.Selection.High.Valid {
		end = json.Number(a.Selection.High.Decimal.String())
	}
	return []any{
		a.Key.MappedType,
		a.Key.MappedProduct,
		a.Key.Channel,
		a.Selection.Code,
		a.Selection.Display,
		json.Number(a.Selection.Low.String()),
		end,
		a.Date.Format(AuditDateLayout),
	}
}

// AuditKeyFromRecord reads the duplicate-detection key from an audit row.
func AuditKeyFromRecord(rec map[string]string) AuditKey {
	return AuditKey{
		Key: Key{
			MappedType:    rec[ColMappedType],
			MappedProduct: rec[ColMappedProduct],
			Channel:       rec[ColChannel],
		},
		SelectionLabel: rec[ColSelectionLabel],
	}
}
