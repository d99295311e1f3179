package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/apierror"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/dto"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/model"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/repository"
	"github.com/WPS-ASNUNES/portal-wps-agendamento/internal/worker"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.CreateSupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]dto.SupplierResponse, error)
}

type supplierService struct {
	repo            repository.SupplierRepository
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	dispatcher      *worker.Dispatcher
	domain          string
}

func NewSupplierService(
	repo repository.SupplierRepository,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	dispatcher *worker.Dispatcher,
	domain string,
) SupplierService {
	return &supplierService{
		repo:            repo,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		dispatcher:      dispatcher,
		domain:          domain,
	}
}

// Create registers a supplier together with its portal account. Both rows are
// written in one transaction; the generated temporary password is returned in
// the response exactly once and additionally emailed to the supplier.
func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.CreateSupplierResponse, error) {
	cnpj := strings.TrimSpace(req.CNPJ)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Friendly duplicate checks up front; the unique indexes still catch
	// anything that slips through concurrently.
	if _, err := s.repo.FindByCNPJ(ctx, cnpj); err == nil {
		return nil, apierror.Conflict("A supplier with this CNPJ already exists")
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apierror.Conflict("A user with this email already exists")
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, apierror.Storage(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierror.Storage(err)
	}

	supplier := model.Supplier{
		CNPJ:        cnpj,
		Description: req.Description,
		IsActive:    true,
	}
	user := model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleSupplier,
		IsActive:     true,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &supplier); err != nil {
			return err
		}
		user.SupplierID = &supplier.ID
		return s.userRepo.CreateTx(tx, &user)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("Supplier CNPJ or user email already registered")
		}
		return nil, apierror.Storage(txErr)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: email,
			Subject: "Your dock scheduling portal access",
			Body: fmt.Sprintf(
				"Welcome to the scheduling portal.\n\nLogin: %s\nTemporary password: %s\n\nPortal: https://%s\nPlease change your password after the first login.",
				email, tempPassword, s.domain),
		})
	}

	return &dto.CreateSupplierResponse{
		Supplier:     supplierToResponse(&supplier),
		User:         userToResponse(&user),
		TempPassword: tempPassword,
	}, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil || supplier.IsDeleted {
		return nil, apierror.NotFound("Supplier not found")
	}

	if req.Description != nil {
		supplier.Description = *req.Description
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, apierror.Storage(err)
	}
	resp := supplierToResponse(supplier)
	return &resp, nil
}

// SoftDelete retires a supplier: blocked while any booking is still scheduled
// or checked in, otherwise flags the supplier and deactivates its accounts in
// one transaction. Historical appointments stay untouched.
func (s *supplierService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil || supplier.IsDeleted {
		return apierror.NotFound("Supplier not found")
	}

	active, err := s.appointmentRepo.CountActiveBySupplier(ctx, id)
	if err != nil {
		return apierror.Storage(err)
	}
	if active > 0 {
		return apierror.Conflict(
			fmt.Sprintf("Supplier still has %d active appointment(s); cancel or complete them first", active))
	}

	supplier.IsDeleted = true
	supplier.IsActive = false

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, supplier); err != nil {
			return err
		}
		return s.userRepo.DeactivateBySupplierTx(tx, id)
	})
	if txErr != nil {
		return apierror.Storage(txErr)
	}
	return nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Storage(err)
	}
	result := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		result = append(result, supplierToResponse(&suppliers[i]))
	}
	return result, nil
}

// tempPasswordAlphabet drops ambiguous characters (0/O, 1/l/I) since the
// credential is read off an email and typed once.
const tempPasswordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateTempPassword() (string, error) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(tempPasswordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func supplierToResponse(s *model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:          s.ID.String(),
		CNPJ:        s.CNPJ,
		Description: s.Description,
		IsActive:    s.IsActive,
		IsDeleted:   s.IsDeleted,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func userToResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
	if u.SupplierID != nil {
		id := u.SupplierID.String()
		resp.SupplierID = &id
	}
	return resp
}
