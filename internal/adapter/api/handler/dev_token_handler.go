package handler

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"toolmart/internal/domain/repository"
	"toolmart/internal/infrastructure/firebase"
	"toolmart/pkg/errors"
	"toolmart/pkg/response"
)

// DevTokenHandler issues and inspects tokens for local development. Its
// routes are only mounted in the development environment.
type DevTokenHandler struct {
	firebaseAuth *firebase.FirebaseAuthClient
	userRepo     repository.UserRepository
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(firebaseAuth *firebase.FirebaseAuthClient, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		firebaseAuth: firebaseAuth,
		userRepo:     userRepo,
	}
}

func SetupDevTokenHandler(firebaseAuth *firebase.FirebaseAuthClient, userRepo repository.UserRepository) {
	devTokenHandler = NewDevTokenHandler(firebaseAuth, userRepo)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	return h.generateTokenForRole(c, "user")
}

func (h *DevTokenHandler) GenerateAdminToken(c echo.Context) error {
	return h.generateTokenForRole(c, "admin")
}

func (h *DevTokenHandler) generateTokenForRole(c echo.Context, role string) error {
	users := h.userRepo.GetUserByRole(c.Request().Context(), role, 1)
	if len(users) == 0 {
		return response.Error(c, errors.NotFound("User with role "+role, nil))
	}

	token, err := h.firebaseAuth.GenerateLongLivedToken(c.Request().Context(), users[0].ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       users[0].ID,
			"email":    users[0].Email,
			"username": users[0].Username,
			"role":     users[0].Role,
		},
	})
}

// GenerateTokenForEmail mints a token for the account registered under the
// given email, so a developer can impersonate a specific seeded user.
func (h *DevTokenHandler) GenerateTokenForEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return response.Error(c, errors.BadRequest("email query parameter is required", nil))
	}

	user, err := h.userRepo.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.firebaseAuth.GenerateLongLivedToken(c.Request().Context(), user.ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

type decodeTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// DecodeToken dumps a JWT's header and claims without verifying the
// signature. Handy for checking expiry and uid while debugging auth flows.
func (h *DevTokenHandler) DecodeToken(c echo.Context) error {
	var req decodeTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	claims := jwt.MapClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(req.Token, claims)
	if err != nil {
		return response.Error(c, errors.BadRequest("Token is not a valid JWT", err))
	}

	return response.Success(c, map[string]interface{}{
		"header": token.Header,
		"claims": claims,
	})
}
