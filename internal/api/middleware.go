package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"course-service/internal/jwt"
	"course-service/internal/model"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

// AuthMiddleware validates the bearer token and stores the resolved caller
// identity in locals. Token issuance happens in the identity service; only
// the claims are consumed here.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization header format"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, jwtv5.ErrTokenExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token has expired"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals("identity", identity)

		return c.Next()
	}
}

func identityFromClaims(claims jwtv5.MapClaims) (model.Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return model.Identity{}, errors.New("user ID not found in token claims")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return model.Identity{}, fmt.Errorf("invalid user ID format in token: %w", err)
	}

	role, ok := claims["role"].(string)
	if !ok {
		return model.Identity{}, errors.New("role not found in token claims")
	}

	switch role {
	case model.RoleCoach, model.RoleManager, model.RoleAdmin:
	default:
		return model.Identity{}, fmt.Errorf("unknown role %q in token claims", role)
	}

	return model.Identity{UserID: userID, Role: role}, nil
}

// GetIdentity returns the identity stored by AuthMiddleware.
func GetIdentity(c *fiber.Ctx) (model.Identity, error) {
	identity, ok := c.Locals("identity").(model.Identity)
	if !ok {
		return model.Identity{}, errors.New("identity not found in context")
	}
	return identity, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		path := c.Path()
		statusStr := fmt.Sprintf("%d", statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
