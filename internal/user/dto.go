package user

import (
	"strings"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/core/common/validation"
)

type RegisterDTO struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
}

// Normalize trims input and defaults the role to employee.
func (d *RegisterDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = normalizeEmail(d.Email)
	d.Role = strings.TrimSpace(d.Role)
	if d.Role == "" {
		d.Role = internal.RoleEmployee
	}
	if d.Department != nil {
		dept := strings.TrimSpace(*d.Department)
		if dept == "" {
			d.Department = nil
		} else {
			d.Department = &dept
		}
	}
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(6)
	v.Field("role", d.Role).OneOf(internal.ErrCodeInvalidRole, internal.RoleEmployee, internal.RoleManager)
	return v.Validate()
}

type NotificationPreferencesDTO struct {
	Enabled *bool `json:"enabled"`
}

func (d NotificationPreferencesDTO) Validate() *internal.AppError {
	if d.Enabled == nil {
		return internal.NewValidationFieldError("enabled", "enabled is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
