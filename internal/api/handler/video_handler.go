package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

// VideoHandler serves video uploads and metadata.
type VideoHandler struct {
	service ports.VideoService
}

func NewVideoHandler(service ports.VideoService) *VideoHandler {
	return &VideoHandler{service: service}
}

type videoRequest struct {
	Title       string  `form:"title" json:"title" validate:"required"`
	Description string  `form:"description" json:"description" validate:"required"`
	Duration    float64 `form:"duration" json:"duration" validate:"gte=0"`
}

func (r videoRequest) input() ports.VideoInput {
	return ports.VideoInput{Title: r.Title, Description: r.Description, Duration: r.Duration}
}

// Upload publishes a new video. Both the video file and the thumbnail are
// required.
//
// @Summary      Upload a video
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData  string  true   "Title"
// @Param        description  formData  string  true   "Description"
// @Param        duration     formData  number  false  "Duration in seconds"
// @Param        videofile    formData  file    true   "Video file"
// @Param        thumbnail    formData  file    true   "Thumbnail image"
// @Success      201  {object}  response.Envelope{data=domain.Video}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      500  {object}  response.ErrorEnvelope
// @Router       /videos [post]
func (h *VideoHandler) Upload(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req videoRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	file, closeFile, err := formUpload(c, "videofile")
	if err != nil {
		return err
	}
	defer closeFile()
	thumbnail, closeThumb, err := formUpload(c, "thumbnail")
	if err != nil {
		return err
	}
	defer closeThumb()

	var missing []string
	if file == nil {
		missing = append(missing, "videofile is required")
	}
	if thumbnail == nil {
		missing = append(missing, "thumbnail is required")
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}

	video, err := h.service.Upload(c.Request().Context(), user.ID, req.input(), *thumbnail, *file)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusCreated, video, "video uploaded successfully")
}

// Get returns a single video with its owner. Unpublished videos are only
// visible to their owner.
//
// @Summary      Get a video
// @Tags         videos
// @Produce      json
// @Param        videoId  path      string  true  "Video id"
// @Success      200      {object}  response.Envelope{data=domain.VideoDetail}
// @Failure      400      {object}  response.ErrorEnvelope
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /videos/{videoId} [get]
func (h *VideoHandler) Get(c echo.Context) error {
	video, err := h.service.Get(c.Request().Context(), c.Param("videoId"), viewerID(c))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, video, "video fetched successfully")
}

// ListMine lists the caller's videos, published or not.
//
// @Summary      List my videos
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]domain.Video}
// @Router       /videos/mine [get]
func (h *VideoHandler) ListMine(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	videos, err := h.service.ListMine(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, videos, "videos fetched successfully")
}

// ListPublished pages through every published video, newest first.
//
// @Summary      List published videos
// @Tags         videos
// @Produce      json
// @Param        page   query     int  false  "Page number (1-based)"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Envelope{data=domain.Page[domain.VideoDetail]}
// @Router       /videos [get]
func (h *VideoHandler) ListPublished(c echo.Context) error {
	page, err := h.service.ListPublished(c.Request().Context(), pageQuery(c))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, page, "videos fetched successfully")
}

// Update edits the text fields and optionally replaces the thumbnail or the
// video file.
//
// @Summary      Update a video
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        videoId      path      string  true   "Video id"
// @Param        title        formData  string  true   "Title"
// @Param        description  formData  string  true   "Description"
// @Param        duration     formData  number  false  "Duration in seconds"
// @Param        thumbnail    formData  file    false  "New thumbnail"
// @Param        videofile    formData  file    false  "New video file"
// @Success      200  {object}  response.Envelope{data=domain.Video}
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      403  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /videos/{videoId} [patch]
func (h *VideoHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req videoRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	thumbnail, closeThumb, err := formUpload(c, "thumbnail")
	if err != nil {
		return err
	}
	defer closeThumb()
	file, closeFile, err := formUpload(c, "videofile")
	if err != nil {
		return err
	}
	defer closeFile()

	video, err := h.service.Update(c.Request().Context(), user.ID, c.Param("videoId"), req.input(), thumbnail, file)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, video, "video updated successfully")
}

// Delete removes a video, its comments and its assets.
//
// @Summary      Delete a video
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      200      {object}  response.Envelope
// @Failure      403      {object}  response.ErrorEnvelope
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /videos/{videoId} [delete]
func (h *VideoHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("videoId")); err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, struct{}{}, "video deleted successfully")
}

// TogglePublish flips the published flag.
//
// @Summary      Toggle publish status
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      200      {object}  response.Envelope{data=domain.Video}
// @Failure      403      {object}  response.ErrorEnvelope
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /videos/{videoId}/toggle-publish [patch]
func (h *VideoHandler) TogglePublish(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	video, err := h.service.TogglePublish(c.Request().Context(), user.ID, c.Param("videoId"))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, video, "video publish status toggled")
}
