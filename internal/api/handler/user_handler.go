package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

// UserHandler serves registration, the session lifecycle and account routes.
type UserHandler struct {
	service ports.UserService
	cookies CookiePolicy
}

func NewUserHandler(service ports.UserService, cookies CookiePolicy) *UserHandler {
	return &UserHandler{service: service, cookies: cookies}
}

// --- Request / Response types ---

type registerRequest struct {
	FullName string `form:"fullname" json:"fullname" validate:"required"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
}

type loginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type watchHistoryResponse struct {
	WatchHistory []string `json:"watchHistory"`
}

// Register creates an account. Avatar and cover image are optional files.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullname    formData  string  true   "Full name"
// @Param        email       formData  string  true   "Email"
// @Param        username    formData  string  true   "Username"
// @Param        password    formData  string  true   "Password"
// @Param        avatar      formData  file    false  "Avatar image"
// @Param        coverimage  formData  file    false  "Cover image"
// @Success      201  {object}  response.Envelope{data=domain.User}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      409  {object}  response.ErrorEnvelope
// @Failure      500  {object}  response.ErrorEnvelope
// @Router       /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	avatar, closeAvatar, err := formUpload(c, "avatar")
	if err != nil {
		return err
	}
	defer closeAvatar()
	cover, closeCover, err := formUpload(c, "coverimage")
	if err != nil {
		return err
	}
	defer closeCover()

	user, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusCreated, user, "user registered successfully")
}

// Login exchanges credentials for a token pair. The identifier is the email
// when given, else the username.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  response.Envelope{data=loginResponse}
// @Failure      400   {object}  response.ErrorEnvelope
// @Failure      401   {object}  response.ErrorEnvelope
// @Failure      429   {object}  response.ErrorEnvelope
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		return domain.NewValidationError("username or email is required")
	}

	user, pair, err := h.service.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		return err
	}

	h.cookies.setTokens(c, pair)
	return response.JSON(c, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout revokes the session and clears the cookies.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.ErrorEnvelope
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.Request().Context(), user.ID); err != nil {
		return err
	}

	h.cookies.clearTokens(c)
	return response.JSON(c, http.StatusOK, struct{}{}, "user logged out successfully")
}

// RefreshToken rotates the session. The refresh token comes from the
// refreshToken cookie or the request body.
//
// @Summary      Refresh the access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  response.Envelope{data=tokensResponse}
// @Failure      401   {object}  response.ErrorEnvelope
// @Router       /users/refresh-token [post]
func (h *UserHandler) RefreshToken(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(middleware.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		// An empty or non-JSON body leaves the token blank.
		_ = c.Bind(&req)
		token = req.RefreshToken
	}

	pair, err := h.service.Refresh(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenReuse) || errors.Is(err, domain.ErrInvalidToken) {
			h.cookies.clearTokens(c)
		}
		return err
	}

	h.cookies.setTokens(c, pair)
	return response.JSON(c, http.StatusOK, tokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "access token refreshed")
}

// ChangePassword replaces the password and ends the session.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.ErrorEnvelope
// @Failure      401   {object}  response.ErrorEnvelope
// @Router       /users/change-password [post]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	h.cookies.clearTokens(c)
	return response.JSON(c, http.StatusOK, struct{}{}, "password changed successfully")
}

// CurrentUser returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      401  {object}  response.ErrorEnvelope
// @Router       /users/current-user [get]
func (h *UserHandler) CurrentUser(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccount edits the profile fields.
//
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateAccountRequest  true  "Profile fields"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.ErrorEnvelope
// @Failure      409   {object}  response.ErrorEnvelope
// @Router       /users/update-account [patch]
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := h.service.UpdateAccount(c.Request().Context(), user.ID, ports.AccountInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, updated, "account details updated successfully")
}

// UpdateAvatar replaces the avatar image.
//
// @Summary      Update avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      400  {object}  response.ErrorEnvelope
// @Router       /users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.replaceImage(c, "avatar", h.service.UpdateAvatar, "avatar updated successfully")
}

// UpdateCoverImage replaces the cover image.
//
// @Summary      Update cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverimage  formData  file  true  "Cover image"
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      400  {object}  response.ErrorEnvelope
// @Router       /users/cover-image [patch]
func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	return h.replaceImage(c, "coverimage", h.service.UpdateCoverImage, "cover image updated successfully")
}

type imageUpdater func(ctx context.Context, userID string, file ports.Upload) (*domain.User, error)

func (h *UserHandler) replaceImage(c echo.Context, field string, update imageUpdater, msg string) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formUpload(c, field)
	if err != nil {
		return err
	}
	defer closeFile()
	if file == nil {
		return domain.NewValidationError(field + " file is required")
	}

	updated, err := update(c.Request().Context(), user.ID, *file)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, updated, msg)
}

// ChannelProfile returns a public channel page. isSubscribed reflects the
// viewer when one is logged in.
//
// @Summary      Channel profile
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Channel username"
// @Success      200       {object}  response.Envelope{data=domain.ChannelProfile}
// @Failure      404       {object}  response.ErrorEnvelope
// @Router       /users/channel/{username} [get]
func (h *UserHandler) ChannelProfile(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return domain.NewValidationError("username is required")
	}

	profile, err := h.service.ChannelProfile(c.Request().Context(), username, viewerID(c))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, profile, "channel profile fetched successfully")
}

// AddWatchHistory records a watched video. 201 when added, 200 when already
// present.
//
// @Summary      Add a video to the watch history
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      201      {object}  response.Envelope{data=watchHistoryResponse}
// @Success      200      {object}  response.Envelope{data=watchHistoryResponse}
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /users/history/{videoId} [post]
func (h *UserHandler) AddWatchHistory(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	added, history, err := h.service.AddWatchHistory(c.Request().Context(), user.ID, c.Param("videoId"))
	if err != nil {
		return err
	}
	if !added {
		return response.JSON(c, http.StatusOK, watchHistoryResponse{WatchHistory: history}, "video already in watch history")
	}
	return response.JSON(c, http.StatusCreated, watchHistoryResponse{WatchHistory: history}, "video added to watch history")
}

// WatchHistory lists watched videos in the order they were added.
//
// @Summary      Watch history
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]domain.Video}
// @Router       /users/history [get]
func (h *UserHandler) WatchHistory(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	videos, err := h.service.WatchHistory(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, videos, "watch history fetched successfully")
}
