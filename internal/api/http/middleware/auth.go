package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/identity"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/reqctx"
)

const LocalsCaller = "caller"

// AuthRequired validates a Bearer access token through the identity gateway,
// then resolves the caller's account so later handlers know its role.
// On success, stores *reqctx.Caller in c.Locals(LocalsCaller) and on the
// request context.
func AuthRequired(gw identity.Gateway, accounts account.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		id, err := gw.Verify(c.Context(), token)
		if err != nil {
			if errors.Is(err, kv.ErrStoreFailure) {
				return storageUnavailable(c)
			}
			return unauthorized(c)
		}

		acct, err := accounts.Resolve(c.Context(), id.UserID)
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			// identity without an account: signup died halfway
			slog.Warn("auth: identity has no account", "user_id", id.UserID)
			return unauthorized(c)
		case errors.Is(err, kv.ErrStoreFailure):
			return storageUnavailable(c)
		case err != nil:
			return err
		}

		caller := &reqctx.Caller{UserID: id.UserID, SessionID: id.SessionID, Role: string(acct.Role)}
		c.Locals(LocalsCaller, caller)
		c.SetContext(reqctx.WithCaller(c.Context(), caller))
		return c.Next()
	}
}

// CallerFromFiber returns the caller stored by AuthRequired.
func CallerFromFiber(c fiber.Ctx) (*reqctx.Caller, bool) {
	caller, ok := c.Locals(LocalsCaller).(*reqctx.Caller)
	return caller, ok && caller != nil
}

func bearerToken(h string) (string, bool) {
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}

func storageUnavailable(c fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage unavailable, retry later"})
}
