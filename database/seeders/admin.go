package seeders

import (
	"context"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/logger"
)

func init() {
	Register("admin", seedAdmin)
}

// seedAdmin creates the first owner from ADMIN_EMAIL and ADMIN_PASSWORD.
// An existing account with that email is kept as is.
func seedAdmin(ctx context.Context, env Env) error {
	if env.AdminEmail == "" || env.AdminPassword == "" || env.Users == nil {
		logger.Info("seed: admin skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}
	_, err := env.Users.Create(ctx, services.UserInput{
		FirstName: "Store",
		LastName:  "Owner",
		Email:     env.AdminEmail,
		Password:  env.AdminPassword,
		Phone:     "0000000000",
		Role:      models.RoleOwner,
	})
	if apperr.Is(err, apperr.Conflict) {
		logger.Info("seed: admin already exists", "email", env.AdminEmail)
		return nil
	}
	return err
}
