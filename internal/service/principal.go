package service

import (
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"

	"github.com/google/uuid"
)

// Principal is the verified identity making a request. The auth middleware
// builds it from validated JWT claims; services trust it fully and never
// re-derive it. SupplierID is set only for supplier-role principals.
type Principal struct {
	UserID     uuid.UUID
	Role       string
	SupplierID *uuid.UUID
}

func (p Principal) IsAdmin() bool    { return p.Role == model.RoleAdmin }
func (p Principal) IsSupplier() bool { return p.Role == model.RoleSupplier }
