package routes

import (
	"errors"
	"time"

	"vinhousing-server/models"
	"vinhousing-server/services"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateContractInput struct {
	RentalRequestID uint       `json:"rental_request_id" validate:"required"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date"`
	Rent            float64    `json:"rent" validate:"gte=0"`
	Deposit         float64    `json:"deposit" validate:"gte=0"`
	TenantIDs       []uint     `json:"tenant_ids"`
}

func CreateContract(ctx iris.Context) {
	var input CreateContractInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	contract, err := contractService().CreateFromRequest(services.CreateContractInput{
		RentalRequestID: input.RentalRequestID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Rent:            input.Rent,
		Deposit:         input.Deposit,
		TenantIDs:       input.TenantIDs,
	}, actorFromCtx(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"contract": contract})
}

func ListContracts(ctx iris.Context) {
	page, perPage := pageParams(ctx)
	actor := actorFromCtx(ctx)

	query := storage.DB.Model(&models.Contract{})

	// Role scoping: landlords see their contracts, tenants the ones they are
	// party to, admins everything.
	if !actor.IsAdmin() {
		query = query.Where(
			"landlord_user_id = ? OR id IN (?)",
			actor.ID,
			storage.DB.Model(&models.ContractTenant{}).Select("contract_id").Where("tenant_user_id = ?", actor.ID),
		)
	}
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if listingID := ctx.URLParam("listing_id"); listingID != "" {
		query = query.Where("listing_id = ?", listingID)
	}

	var total int64
	query.Count(&total)

	var contracts []models.Contract
	if err := query.Preload("Tenants").Preload("Tenants.Tenant").Preload("Listing").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&contracts).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, contracts, page, perPage, total)
}

func GetContract(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var contract models.Contract
	err := storage.DB.
		Preload("Tenants").Preload("Tenants.Tenant").
		Preload("Signatures").Preload("Signatures.User").
		Preload("Listing").Preload("Landlord").
		First(&contract, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Contract not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"contract": contract})
}

type UpdateContractInput struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Rent      *float64   `json:"rent"`
	Deposit   *float64   `json:"deposit"`
	Status    *string    `json:"status"`
}

func UpdateContract(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var input UpdateContractInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	actor := actorFromCtx(ctx)
	contract, err := contractService().Update(id, services.ContractPatch{
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Rent:      input.Rent,
		Deposit:   input.Deposit,
		Status:    input.Status,
	}, actor)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	// The manual signed override bypasses the completion check; leave a trace.
	if input.Status != nil && *input.Status == models.ContractStatusSigned {
		utils.Audit(ctx, "contract.status_override", "contract", contract.ID, nil, contract)
	}

	ctx.JSON(iris.Map{"contract": contract})
}

type SignContractInput struct {
	SignatureMethod string `json:"signature_method" validate:"omitempty,oneof=checkbox typed_name drawn"`
}

func SignContract(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	// Body is optional; an empty POST signs with the default method.
	var input SignContractInput
	if ctx.GetContentLength() > 0 {
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}
	}

	signature, err := contractService().Sign(id, actorFromCtx(ctx), input.SignatureMethod)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"signature": signature})
}
