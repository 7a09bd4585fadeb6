package handler

import (
	"toolmart/internal/usecase"
	"toolmart/pkg/response"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	Username  string `json:"username,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// SyncProfile creates the profile row on first login and returns it on
// every later call.
func (h *UserHandler) SyncProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.SyncProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	uid := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(
		c.Request().Context(),
		uid,
		usecase.UpdateProfileInput{
			Username:  req.Username,
			Bio:       req.Bio,
			AvatarURL: req.AvatarURL,
		},
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
