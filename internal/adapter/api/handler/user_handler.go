package handler

import (
	"strconv"

	"cassmarket/internal/domain/entity"
	"cassmarket/internal/usecase"
	"cassmarket/pkg/errors"
	"cassmarket/pkg/response"

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
	Name     string `json:"name" validate:"omitempty,min=2,max=80"`
	Email    string `json:"email" validate:"omitempty,email"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
	Settings *struct {
		Notifications bool   `json:"notifications"`
		EmailUpdates  bool   `json:"email_updates"`
		Privacy       string `json:"privacy" validate:"omitempty,oneof=public contacts private"`
	} `json:"settings"`
}

type updateStatusRequest struct {
	IsOnline bool `json:"is_online"`
}

func (h *UserHandler) GetMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	userID := c.Param("id")

	user, err := h.userUseCase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	}
	if req.Settings != nil {
		input.Settings = &entity.UserSettings{
			Notifications: req.Settings.Notifications,
			EmailUpdates:  req.Settings.EmailUpdates,
			Privacy:       req.Settings.Privacy,
		}
	}

	user, err := h.userUseCase.CreateOrUpdateUser(c.Request().Context(), userID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateOnlineStatus(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := h.userUseCase.UpdateOnlineStatus(c.Request().Context(), userID, req.IsOnline); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{
		"is_online": req.IsOnline,
	})
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	prefix := c.QueryParam("q")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, err := h.userUseCase.SearchUsers(c.Request().Context(), prefix, limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}
