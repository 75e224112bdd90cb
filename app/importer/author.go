package importer

import (
	"context"

	"github.com/lysyi3m/news-importer/app/database"
)

// ResolveAuthor picks the user imported articles are attributed to: the user
// with the configured email, else the first super admin, else the first admin.
// Returns nil when none exists.
func ResolveAuthor(ctx context.Context, users database.UserRepository, email string) (*int64, error) {
	if email != "" {
		user, err := users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return &user.ID, nil
		}
	}

	for _, role := range []string{database.RoleSuperAdmin, database.RoleAdmin} {
		user, err := users.GetFirstUserByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return &user.ID, nil
		}
	}

	return nil, nil
}
