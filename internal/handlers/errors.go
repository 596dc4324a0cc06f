package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/workboard/workboard-api/internal/errors"
	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/services"
)

// respondServiceError maps service and policy sentinels onto transport
// responses. Forbidden and not-found stay distinct: a resource the caller
// may not see answers 403, a missing one answers 404.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, policy.ErrInactiveAccount):
		apierrors.AccountDisabled(c)

	case errors.Is(err, policy.ErrForbidden):
		apierrors.Forbidden(c, "")

	case errors.Is(err, policy.ErrOwnerRemoval),
		errors.Is(err, policy.ErrAmbiguousDepartment),
		errors.Is(err, policy.ErrDepartmentNotAllowed),
		errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrNoUserIDsProvided),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrDepartmentNameRequired),
		errors.Is(err, services.ErrFullNameRequired),
		errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDepartmentNameTaken),
		errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrSubtaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDepartmentNotFound),
		errors.Is(err, services.ErrNotProjectMember):
		apierrors.NotFound(c, err.Error())

	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
