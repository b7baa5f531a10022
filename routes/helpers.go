package routes

import (
	"errors"

	"vinhousing-server/services"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// Events is the domain-event sink shared by all handlers. main replaces it
// with the Redis publisher; tests leave the no-op in place.
var Events services.Emitter = services.NopEmitter{}

func rentalRequestService() *services.RentalRequestService {
	return services.NewRentalRequestService(storage.DB, Events)
}

func contractService() *services.ContractService {
	return services.NewContractService(storage.DB, Events)
}

func issueService() *services.IssueService {
	return services.NewIssueService(storage.DB, Events)
}

func actorFromCtx(ctx iris.Context) services.Actor {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	return services.Actor{ID: claims.ID, Role: claims.Role}
}

// handleServiceError maps the workflow error taxonomy to HTTP statuses.
func handleServiceError(ctx iris.Context, err error) {
	var (
		validationErr    *services.ValidationError
		notFoundErr      *services.NotFoundError
		authorizationErr *services.AuthorizationError
		conflictErr      *services.ConflictError
		invalidStateErr  *services.InvalidStateError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(ctx, iris.StatusBadRequest, "validation_error", validationErr.Message)
	case errors.As(err, &notFoundErr):
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &authorizationErr):
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", authorizationErr.Message)
	case errors.As(err, &conflictErr):
		utils.JSONError(ctx, iris.StatusConflict, "conflict", conflictErr.Message)
	case errors.As(err, &invalidStateErr):
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_state", invalidStateErr.Message)
	default:
		utils.CreateInternalServerError(ctx)
	}
}

func pageParams(ctx iris.Context) (page, perPage int) {
	page = ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = ctx.URLParamIntDefault("limit", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
