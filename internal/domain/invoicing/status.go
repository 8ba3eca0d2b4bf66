package invoicing

import (
	"encoding/json"
	"fmt"
)

// InvoiceStatus is the persisted numeric status code of an invoice
type InvoiceStatus int

const (
	InvoiceStatusPending       InvoiceStatus = 1 // pendiente
	InvoiceStatusUnpaid        InvoiceStatus = 2 // no_pagado
	InvoiceStatusPartiallyPaid InvoiceStatus = 3 // parcialmente_pagado
	InvoiceStatusOverdue       InvoiceStatus = 4 // vencido
	InvoiceStatusPaid          InvoiceStatus = 5 // pagado
	InvoiceStatusAnnulled      InvoiceStatus = 6 // anulado
)

var invoiceStatusNames = map[InvoiceStatus]string{
	InvoiceStatusPending:       "pendiente",
	InvoiceStatusUnpaid:        "no_pagado",
	InvoiceStatusPartiallyPaid: "parcialmente_pagado",
	InvoiceStatusOverdue:       "vencido",
	InvoiceStatusPaid:          "pagado",
	InvoiceStatusAnnulled:      "anulado",
}

// IsValid checks if the code is a known status
func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceStatusNames[s]
	return ok
}

// String returns the status name
func (s InvoiceStatus) String() string {
	if name, ok := invoiceStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("desconocido(%d)", int(s))
}

// Code returns the numeric code
func (s InvoiceStatus) Code() int {
	return int(s)
}

// AcceptsPayments returns false for statuses that can no longer be paid
func (s InvoiceStatus) AcceptsPayments() bool {
	return s != InvoiceStatusAnnulled
}

// MarshalJSON renders the status as {"code": n, "name": "..."}
func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code int    `json:"code"`
		Name string `json:"name"`
	}{Code: int(s), Name: s.String()})
}

// InvoiceKind separates the regular invoice from the materials invoice of a budget
type InvoiceKind string

const (
	InvoiceKindRegular   InvoiceKind = "regular"
	InvoiceKindMaterials InvoiceKind = "materiales"
)

// IsValid checks if the kind is known
func (k InvoiceKind) IsValid() bool {
	return k == InvoiceKindRegular || k == InvoiceKindMaterials
}
