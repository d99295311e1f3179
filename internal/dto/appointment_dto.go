package dto

// ─── Filter DTOs ─────────────────────────────────────────────────────────────

// WeekFilter is bound from the query string of the week listing endpoints.
type WeekFilter struct {
	Week string `form:"week" validate:"required"` // YYYY-MM-DD, start of the week
}

type DateFilter struct {
	Date string `form:"date" validate:"required"` // YYYY-MM-DD
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateAppointmentRequest struct {
	Date          string `json:"date"           validate:"required"`
	Time          string `json:"time"           validate:"required"`
	PurchaseOrder string `json:"purchase_order" validate:"required,max=100"`
	TruckPlate    string `json:"truck_plate"    validate:"required,max=20"`
	DriverName    string `json:"driver_name"    validate:"required,max=100"`
}

// UpdateAppointmentRequest uses pointer fields: only fields present in the
// JSON body are applied, absent fields stay untouched.
type UpdateAppointmentRequest struct {
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	PurchaseOrder *string `json:"purchase_order" validate:"omitempty,max=100"`
	TruckPlate    *string `json:"truck_plate"    validate:"omitempty,max=20"`
	DriverName    *string `json:"driver_name"    validate:"omitempty,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AppointmentResponse struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	PurchaseOrder string  `json:"purchase_order"`
	TruckPlate    string  `json:"truck_plate"`
	DriverName    string  `json:"driver_name"`
	Status        string  `json:"status"`
	CheckInTime   *string `json:"check_in_time"`
	CheckOutTime  *string `json:"check_out_time"`
	SupplierID    string  `json:"supplier_id"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// WeekAppointment decorates an appointment with ownership flags for the
// supplier week view: foreign bookings are visible (so conflicts show on the
// calendar) but only own scheduled ones are editable.
type WeekAppointment struct {
	AppointmentResponse
	IsOwn   bool `json:"is_own"`
	CanEdit bool `json:"can_edit"`
}

// ERPPayload is the check-in document handed to the ERP integration.
type ERPPayload struct {
	AppointmentID string  `json:"appointment_id"`
	SupplierCNPJ  string  `json:"supplier_cnpj"`
	SupplierName  string  `json:"supplier_name"`
	PurchaseOrder string  `json:"purchase_order"`
	TruckPlate    string  `json:"truck_plate"`
	DriverName    string  `json:"driver_name"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time"`
	CheckInTime   *string `json:"check_in_time"`
	CheckOutTime  *string `json:"check_out_time"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
}

type CheckInResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	ERPPayload  ERPPayload          `json:"erp_payload"`
}
