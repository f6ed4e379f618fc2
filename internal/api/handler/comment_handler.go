package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/ports"
)

// CommentHandler serves comments on videos.
type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

// List pages through the comments on a video, newest first.
//
// @Summary      List comments
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true   "Video id"
// @Param        page     query     int     false  "Page number (1-based)"
// @Param        limit    query     int     false  "Page size"
// @Success      200      {object}  response.Envelope{data=domain.Page[domain.CommentView]}
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /comments/video/{videoId} [get]
func (h *CommentHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), user.ID, c.Param("videoId"), pageQuery(c))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, page, "comments fetched successfully")
}

// Add comments on a video.
//
// @Summary      Add a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string          true  "Video id"
// @Param        body     body      commentRequest  true  "Comment"
// @Success      201      {object}  response.Envelope{data=domain.Comment}
// @Failure      400      {object}  response.ErrorEnvelope
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /comments/video/{videoId} [post]
func (h *CommentHandler) Add(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Add(c.Request().Context(), user.ID, c.Param("videoId"), req.Content)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusCreated, comment, "comment added successfully")
}

// Update edits a comment owned by the caller.
//
// @Summary      Update a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        commentId  path      string          true  "Comment id"
// @Param        body       body      commentRequest  true  "Comment"
// @Success      200        {object}  response.Envelope{data=domain.Comment}
// @Failure      403        {object}  response.ErrorEnvelope
// @Failure      404        {object}  response.ErrorEnvelope
// @Router       /comments/{commentId} [patch]
func (h *CommentHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Update(c.Request().Context(), user.ID, c.Param("commentId"), req.Content)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, comment, "comment updated successfully")
}

// Delete removes a comment owned by the caller.
//
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        commentId  path      string  true  "Comment id"
// @Success      200        {object}  response.Envelope
// @Failure      403        {object}  response.ErrorEnvelope
// @Failure      404        {object}  response.ErrorEnvelope
// @Router       /comments/{commentId} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("commentId")); err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, struct{}{}, "comment deleted successfully")
}
