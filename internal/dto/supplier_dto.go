package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	CNPJ        string `json:"cnpj"        validate:"required,min=11,max=18"`
	Description string `json:"description" validate:"required,min=2,max=200"`
	Email       string `json:"email"       validate:"required,email"`
}

// UpdateSupplierRequest uses pointer fields: only fields present in the JSON
// body are applied, absent fields stay untouched.
type UpdateSupplierRequest struct {
	Description *string `json:"description" validate:"omitempty,min=2,max=200"`
	IsActive    *bool   `json:"is_active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierResponse struct {
	ID          string `json:"id"`
	CNPJ        string `json:"cnpj"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	IsDeleted   bool   `json:"is_deleted"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateSupplierResponse carries the generated temporary credential exactly
// once — it is never retrievable again.
type CreateSupplierResponse struct {
	Supplier     SupplierResponse `json:"supplier"`
	User         UserResponse     `json:"user"`
	TempPassword string           `json:"temp_password"`
}
