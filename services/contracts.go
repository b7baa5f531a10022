package services

import (
	"errors"
	"fmt"
	"time"

	"vinhousing-server/models"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContractService owns the contract lifecycle: creation from an accepted
// rental request, partial field updates, and signature collection.
type ContractService struct {
	db     *gorm.DB
	events Emitter
}

func NewContractService(db *gorm.DB, events Emitter) *ContractService {
	if events == nil {
		events = NopEmitter{}
	}
	return &ContractService{db: db, events: events}
}

type CreateContractInput struct {
	RentalRequestID uint
	StartDate       time.Time
	EndDate         *time.Time
	Rent            float64
	Deposit         float64
	TenantIDs       []uint
}

// CreateFromRequest creates a draft contract from an accepted rental request.
// The requester is always included as a tenant, even when the caller's
// tenant_ids list omits them. Contract and tenant rows commit atomically.
func (s *ContractService) CreateFromRequest(in CreateContractInput, actor Actor) (*models.Contract, error) {
	var request models.RentalRequest
	err := s.db.Preload("Listing").
		Where("id = ? AND status = ?", in.RentalRequestID, models.RequestStatusAccepted).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Accepted rental request"}
		}
		return nil, err
	}
	if request.Listing == nil {
		return nil, &NotFoundError{Resource: "Listing"}
	}
	if err := CanManageContract(actor, request.Listing.OwnerUserID); err != nil {
		return nil, err
	}
	if in.Rent < 0 || in.Deposit < 0 {
		return nil, &ValidationError{Message: "rent and deposit must be non-negative"}
	}

	tenantIDs := in.TenantIDs
	if !slices.Contains(tenantIDs, request.RequesterUserID) {
		tenantIDs = append(tenantIDs, request.RequesterUserID)
	}

	contract := models.Contract{
		ListingID:      request.ListingID,
		LandlordUserID: request.Listing.OwnerUserID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Rent:           in.Rent,
		Deposit:        in.Deposit,
		Status:         models.ContractStatusDraft,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&contract).Error; err != nil {
			return err
		}
		seen := make(map[uint]bool, len(tenantIDs))
		for _, tenantID := range tenantIDs {
			if seen[tenantID] {
				continue
			}
			seen[tenantID] = true
			ct := models.ContractTenant{ContractID: contract.ID, TenantUserID: tenantID}
			if err := tx.Create(&ct).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(EventContractCreated, contract)
	return &contract, nil
}

// autoCreateFromRequest is the acceptance-path variant of contract creation:
// terms are derived from the listing and the request's desired move-in date.
// Runs inside the caller's transaction.
func autoCreateFromRequest(tx *gorm.DB, request *models.RentalRequest, listing *models.Listing) (*models.Contract, error) {
	startDate := time.Now()
	if request.DesiredMoveIn != nil {
		startDate = *request.DesiredMoveIn
	}

	contract := models.Contract{
		ListingID:      listing.ID,
		LandlordUserID: listing.OwnerUserID,
		StartDate:      startDate,
		Rent:           listing.Price,
		Deposit:        listing.Deposit,
		Status:         models.ContractStatusDraft,
	}
	if err := tx.Create(&contract).Error; err != nil {
		return nil, err
	}

	tenant := models.ContractTenant{ContractID: contract.ID, TenantUserID: request.RequesterUserID}
	if err := tx.Create(&tenant).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// ContractPatch carries the optional fields of a partial update; only set
// fields reach the UPDATE statement.
type ContractPatch struct {
	StartDate *time.Time
	EndDate   *time.Time
	Rent      *float64
	Deposit   *float64
	Status    *string
}

var contractStatuses = []string{
	models.ContractStatusDraft,
	models.ContractStatusSigned,
	models.ContractStatusActive,
	models.ContractStatusTerminated,
	models.ContractStatusCancelled,
}

// Update applies a partial update. Setting status to "signed" through this
// path bypasses the signature-completion check, so it is restricted to
// admins; the route records an audit entry for the override.
func (s *ContractService) Update(id uint, patch ContractPatch, actor Actor) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Contract"}
		}
		return nil, err
	}
	if err := CanManageContract(actor, contract.LandlordUserID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		updates["end_date"] = *patch.EndDate
	}
	if patch.Rent != nil {
		if *patch.Rent < 0 {
			return nil, &ValidationError{Message: "rent must be non-negative"}
		}
		updates["rent"] = *patch.Rent
	}
	if patch.Deposit != nil {
		if *patch.Deposit < 0 {
			return nil, &ValidationError{Message: "deposit must be non-negative"}
		}
		updates["deposit"] = *patch.Deposit
	}
	if patch.Status != nil {
		if !slices.Contains(contractStatuses, *patch.Status) {
			return nil, &ValidationError{Message: "Invalid contract status: " + *patch.Status}
		}
		if *patch.Status == models.ContractStatusSigned {
			if !actor.IsAdmin() {
				return nil, &AuthorizationError{Message: "Only admins can mark a contract signed directly"}
			}
			updates["signed_at"] = time.Now()
		}
		updates["status"] = *patch.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&contract).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.First(&contract, id).Error; err != nil {
		return nil, err
	}
	s.events.Emit(EventContractUpdated, contract)
	return &contract, nil
}

// Sign records the caller's signature and promotes the contract to "signed"
// once every party (landlord + all tenants) has signed. The insert, the
// completion check and the status transition share one transaction with the
// contract row locked, so concurrent final signatures serialize: exactly one
// performs the draft->signed transition.
func (s *ContractService) Sign(contractID uint, actor Actor, method string) (*models.ContractSignature, error) {
	if method == "" {
		method = "checkbox"
	}

	var sig models.ContractSignature
	var completed bool
	var contract models.Contract

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lockTx := tx
		// FOR UPDATE is Postgres syntax; SQLite serializes writers on its own.
		if tx.Dialector.Name() == "postgres" {
			lockTx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := lockTx.First(&contract, contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Contract"}
			}
			return err
		}
		if contract.Status == models.ContractStatusTerminated || contract.Status == models.ContractStatusCancelled {
			return &InvalidStateError{Message: "Contract is " + contract.Status}
		}

		var tenantIDs []uint
		if err := tx.Model(&models.ContractTenant{}).
			Where("contract_id = ?", contract.ID).
			Pluck("tenant_user_id", &tenantIDs).Error; err != nil {
			return err
		}
		if err := CanSignContract(actor, &contract, tenantIDs); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.ContractSignature{}).
			Where("contract_id = ? AND user_id = ?", contract.ID, actor.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &ConflictError{Message: "You have already signed this contract"}
		}

		now := time.Now()
		sig = models.ContractSignature{
			ContractID:      contract.ID,
			UserID:          actor.ID,
			SignedAt:        now,
			SignatureMethod: method,
		}
		if err := tx.Create(&sig).Error; err != nil {
			return err
		}

		// Completion check reads the post-insert count, so the last signer
		// always observes their own signature.
		var signedCount int64
		if err := tx.Model(&models.ContractSignature{}).
			Where("contract_id = ?", contract.ID).
			Distinct("user_id").
			Count(&signedCount).Error; err != nil {
			return err
		}
		totalParties := int64(len(tenantIDs)) + 1 // tenants + landlord

		if signedCount == totalParties && contract.Status == models.ContractStatusDraft {
			if err := tx.Model(&models.Contract{}).Where("id = ?", contract.ID).
				Updates(map[string]interface{}{
					"status":    models.ContractStatusSigned,
					"signed_at": now,
				}).Error; err != nil {
				return err
			}
			completed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.events.Emit(EventContractSigned, map[string]interface{}{
			"contract_id": contract.ID,
			"signed_at":   sig.SignedAt,
		})
		notify(s.db, contract.LandlordUserID, "Contract fully signed",
			fmt.Sprintf("All parties have signed contract #%d", contract.ID),
			"contract", "contract", contract.ID)
	}
	return &sig, nil
}
