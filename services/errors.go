package services

// Workflow errors. Routes map these to HTTP statuses in one place:
// ValidationError/InvalidStateError -> 400, AuthorizationError -> 403,
// NotFoundError -> 404, ConflictError -> 409.

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }
