package serverutils

import (
	"strings"

	"booking-order-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

var roles = map[string]entity.OperatorType{
	"buyer":  entity.OperatorTypeBuyer,
	"user":   entity.OperatorTypeBuyer,
	"seller": entity.OperatorTypeSeller,
	"admin":  entity.OperatorTypeAdmin,
}

// JwtMiddleware verifies an HS256 bearer token and stores the caller as an entity.Actor.
// Claims: user_id (uuid), role (buyer|seller|admin, default buyer), name.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}
		actor, ok := actorFromClaims(claims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		ctx.Locals(actorKey, actor)
		return ctx.Next()
	}
}

func actorFromClaims(claims jwt.MapClaims) (entity.Actor, bool) {
	rawId, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawId)
	if err != nil {
		return entity.Actor{}, false
	}
	role, _ := claims["role"].(string)
	opType, ok := roles[strings.ToLower(role)]
	if role == "" {
		opType, ok = entity.OperatorTypeBuyer, true
	}
	if !ok {
		return entity.Actor{}, false
	}
	name, _ := claims["name"].(string)
	return entity.Actor{Type: opType, Id: id, Name: name}, true
}

// ActorFrom returns the caller stored by JwtMiddleware.
func ActorFrom(ctx *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := ctx.Locals(actorKey).(entity.Actor)
	return actor, ok
}
