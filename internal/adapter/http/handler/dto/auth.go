package dto

import (
	"github.com/yerzhank/ride-dispatch/internal/domain/types"
	"github.com/yerzhank/ride-dispatch/pkg/validator"
)

type IssueTokenRequest struct {
	ProvisionSecret string `json:"provision_secret"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	VehicleType     string `json:"vehicle_type,omitempty"`
}

func (r *IssueTokenRequest) Validate(v *validator.Validator) {
	v.Check(r.ProvisionSecret != "", "provision_secret", "must be provided")

	v.Check(r.Name != "", "name", "must be provided")
	v.Check(len(r.Name) < 100, "name", "must be less than 100 characters")

	v.Check(r.Role != "", "role", "must be provided")
	if r.Role != "" {
		v.Check(validator.PermittedValue(r.Role,
			types.RiderRole.String(), types.DriverRole.String()),
			"role", "must be RIDER or DRIVER")
	}
}
