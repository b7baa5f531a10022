package services

import (
	"errors"
	"fmt"
	"time"

	"vinhousing-server/models"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type RentalRequestService struct {
	db     *gorm.DB
	events Emitter
}

func NewRentalRequestService(db *gorm.DB, events Emitter) *RentalRequestService {
	if events == nil {
		events = NopEmitter{}
	}
	return &RentalRequestService{db: db, events: events}
}

type CreateRequestInput struct {
	ListingID     uint
	Message       string
	DesiredMoveIn *time.Time
}

// Create opens a pending rental request against an available listing. A
// requester keeps at most one pending request per listing.
func (s *RentalRequestService) Create(in CreateRequestInput, actor Actor) (*models.RentalRequest, error) {
	var listing models.Listing
	if err := s.db.First(&listing, in.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Listing"}
		}
		return nil, err
	}
	if listing.Status != "available" {
		return nil, &InvalidStateError{Message: "Listing is not available"}
	}
	if listing.OwnerUserID == actor.ID {
		return nil, &ValidationError{Message: "You cannot request your own listing"}
	}

	var pending int64
	if err := s.db.Model(&models.RentalRequest{}).
		Where("listing_id = ? AND requester_user_id = ? AND status = ?",
			listing.ID, actor.ID, models.RequestStatusPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, &ConflictError{Message: "You already have a pending request for this listing"}
	}

	request := models.RentalRequest{
		ListingID:       listing.ID,
		RequesterUserID: actor.ID,
		Message:         in.Message,
		DesiredMoveIn:   in.DesiredMoveIn,
		Status:          models.RequestStatusPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}

	notify(s.db, listing.OwnerUserID, "New rental request",
		fmt.Sprintf("You have a new rental request for listing #%d", listing.ID),
		"rental_request", "rental_request", request.ID)

	return &request, nil
}

var resolvableStatuses = []string{
	models.RequestStatusAccepted,
	models.RequestStatusRejected,
	models.RequestStatusCancelled,
}

// Resolve moves a pending request to accepted, rejected or cancelled. On
// acceptance a draft contract is auto-created for the listing unless a
// non-cancelled contract already links this listing and landlord; the status
// write and the contract creation commit atomically.
func (s *RentalRequestService) Resolve(requestID uint, newStatus string, actor Actor) (*models.RentalRequest, error) {
	if !slices.Contains(resolvableStatuses, newStatus) {
		return nil, &ValidationError{Message: "Invalid status. Must be accepted, rejected, or cancelled."}
	}

	var request models.RentalRequest
	var contract *models.Contract

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Listing").First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "Rental request"}
			}
			return err
		}
		if request.Listing == nil {
			return &NotFoundError{Resource: "Listing"}
		}

		if err := CanResolveRequest(actor, &request, request.Listing.OwnerUserID, newStatus); err != nil {
			return err
		}
		if request.Resolved() {
			return &InvalidStateError{Message: "Request is no longer pending"}
		}

		if err := tx.Model(&request).Update("status", newStatus).Error; err != nil {
			return err
		}
		request.Status = newStatus

		if newStatus != models.RequestStatusAccepted {
			return nil
		}

		// Re-accept guard: never double-create contracts for this listing
		// and landlord.
		var existing int64
		if err := tx.Model(&models.Contract{}).
			Where("listing_id = ? AND landlord_user_id = ? AND status != ?",
				request.ListingID, request.Listing.OwnerUserID, models.ContractStatusCancelled).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		created, err := autoCreateFromRequest(tx, &request, request.Listing)
		if err != nil {
			return err
		}
		contract = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(EventRentalRequestResolved, request)
	notify(s.db, request.RequesterUserID, "Rental request "+newStatus,
		fmt.Sprintf("Your rental request for listing #%d was %s", request.ListingID, newStatus),
		"rental_request", "rental_request", request.ID)

	if contract != nil {
		s.events.Emit(EventContractCreated, *contract)
		notify(s.db, request.RequesterUserID, "Draft contract created",
			fmt.Sprintf("A draft contract was created for listing #%d", request.ListingID),
			"contract", "contract", contract.ID)
	}

	return &request, nil
}
