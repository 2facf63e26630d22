package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/internal/model"
	"github.com/pageza/pantrychef/backend/internal/service"
)

// Registrar creates accounts; satisfied by service.AuthService
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
}

// SeedUsers registers demo1..demoN with the given password. Accounts that
// already exist are skipped, so the command can be rerun.
func SeedUsers(ctx context.Context, reg Registrar, count int, password string, logger *zap.Logger) (Result, error) {
	var res Result
	for n := 1; n <= count; n++ {
		username := fmt.Sprintf("demo%d", n)
		_, err := reg.Register(ctx, username, username+"@example.com", password)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, service.ErrUserExists):
			logger.Debug("user exists", zap.String("username", username))
			res.Failed++
		default:
			return res, fmt.Errorf("register %s: %w", username, err)
		}
	}
	logger.Info("seeded users", zap.Int("created", res.Imported), zap.Int("skipped", res.Failed))
	return res, nil
}
