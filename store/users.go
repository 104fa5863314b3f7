package store

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"panchayattax/apperr"
	"panchayattax/collections"
	"panchayattax/services"
)

// GetUser loads an application user by id.
func (s *Store) GetUser(ctx context.Context, id string) (services.AppUser, error) {
	rec, err := s.app.FindRecordById(collections.Users, id)
	if err != nil {
		return services.AppUser{}, notFound("user", id, err)
	}
	return DecodeUser(rec), nil
}

// SetUserRole changes a user's role and active flag.
func (s *Store) SetUserRole(ctx context.Context, id string, role services.Role, active bool) (services.AppUser, error) {
	err := validation.Validate(role, validation.Required, validation.In(
		services.RoleSuperAdmin, services.RoleAdmin, services.RoleViewer,
	))
	if err != nil {
		return services.AppUser{}, apperr.Validation(validation.Errors{"role": err})
	}

	rec, err := s.app.FindRecordById(collections.Users, id)
	if err != nil {
		return services.AppUser{}, notFound("user", id, err)
	}
	rec.Set("role", string(role))
	rec.Set("active", active)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return services.AppUser{}, saveErr("user", err)
	}
	return DecodeUser(rec), nil
}
