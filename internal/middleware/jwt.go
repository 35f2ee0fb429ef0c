package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/utils"
)

// Claim is the verified identity extracted from a bearer token. Handlers trust
// its ID and Role unconditionally once the middleware has run.
type Claim struct {
	ID    uint
	Role  models.Role
	Name  string
	Email string
}

const claimLocalKey = "auth_claim"

// JWTProtected returns a middleware that validates JWT bearer tokens and binds
// the resulting Claim to the request. Expired and malformed tokens both read
// as unauthenticated; role or ownership mismatches are decided later.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "token expired")
			}
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid token")
		}
		if !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid token")
		}

		mapClaims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid token claims")
		}

		claim, err := claimFromMap(mapClaims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid token claims")
		}

		c.Locals(claimLocalKey, claim)

		return c.Next()
	}
}

// ClaimFromContext returns the verified claim bound by JWTProtected, or false
// when the request never passed through it.
func ClaimFromContext(c *fiber.Ctx) (Claim, bool) {
	value := c.Locals(claimLocalKey)
	if value == nil {
		return Claim{}, false
	}

	claim, ok := value.(Claim)
	return claim, ok
}

// SetClaim binds a claim directly, bypassing token verification. Test helper.
func SetClaim(c *fiber.Ctx, claim Claim) {
	c.Locals(claimLocalKey, claim)
}

func claimFromMap(claims jwt.MapClaims) (Claim, error) {
	id, err := subjectID(claims)
	if err != nil {
		return Claim{}, err
	}

	roleValue, _ := claims["role"].(string)
	role, err := models.ParseRole(roleValue)
	if err != nil {
		return Claim{}, err
	}

	claim := Claim{ID: id, Role: role}
	if name, ok := claims["name"].(string); ok {
		claim.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		claim.Email = email
	}

	return claim, nil
}

func subjectID(claims jwt.MapClaims) (uint, error) {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}

		switch v := value.(type) {
		case float64:
			if v < 0 {
				return 0, fmt.Errorf("invalid subject")
			}
			return uint(v), nil
		case string:
			parsed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return 0, err
			}
			return uint(parsed), nil
		case int:
			if v < 0 {
				return 0, fmt.Errorf("invalid subject")
			}
			return uint(v), nil
		}
	}

	return 0, fmt.Errorf("missing subject")
}
