package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/ports"
)

// PlaylistHandler serves playlists.
type PlaylistHandler struct {
	service ports.PlaylistService
}

func NewPlaylistHandler(service ports.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

type playlistRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// @Summary      Create a playlist
// @Tags         playlists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      playlistRequest  true  "Playlist"
// @Success      201   {object}  response.Envelope{data=domain.Playlist}
// @Failure      400   {object}  response.ErrorEnvelope
// @Router       /playlists [post]
func (h *PlaylistHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	playlist, err := h.service.Create(c.Request().Context(), user.ID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusCreated, playlist, "playlist created successfully")
}

// @Summary      List my playlists
// @Tags         playlists
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]domain.Playlist}
// @Router       /playlists/mine [get]
func (h *PlaylistHandler) ListMine(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	playlists, err := h.service.ListMine(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, playlists, "playlists fetched successfully")
}

// Get returns a playlist with its videos resolved.
//
// @Summary      Get a playlist
// @Tags         playlists
// @Produce      json
// @Security     BearerAuth
// @Param        playlistId  path      string  true  "Playlist id"
// @Success      200         {object}  response.Envelope{data=domain.PlaylistDetail}
// @Failure      404         {object}  response.ErrorEnvelope
// @Router       /playlists/{playlistId} [get]
func (h *PlaylistHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	playlist, err := h.service.Get(c.Request().Context(), user.ID, c.Param("playlistId"))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, playlist, "playlist fetched successfully")
}

// @Summary      Update a playlist
// @Tags         playlists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        playlistId  path      string           true  "Playlist id"
// @Param        body        body      playlistRequest  true  "Playlist"
// @Success      200         {object}  response.Envelope{data=domain.Playlist}
// @Failure      403         {object}  response.ErrorEnvelope
// @Failure      404         {object}  response.ErrorEnvelope
// @Router       /playlists/{playlistId} [patch]
func (h *PlaylistHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	playlist, err := h.service.Update(c.Request().Context(), user.ID, c.Param("playlistId"), req.Name, req.Description)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, playlist, "playlist updated successfully")
}

// @Summary      Delete a playlist
// @Tags         playlists
// @Produce      json
// @Security     BearerAuth
// @Param        playlistId  path      string  true  "Playlist id"
// @Success      200         {object}  response.Envelope
// @Failure      403         {object}  response.ErrorEnvelope
// @Failure      404         {object}  response.ErrorEnvelope
// @Router       /playlists/{playlistId} [delete]
func (h *PlaylistHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("playlistId")); err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

// @Summary      Add a video to a playlist
// @Tags         playlists
// @Produce      json
// @Security     BearerAuth
// @Param        playlistId  path      string  true  "Playlist id"
// @Param        videoId     path      string  true  "Video id"
// @Success      200         {object}  response.Envelope{data=domain.Playlist}
// @Failure      403         {object}  response.ErrorEnvelope
// @Failure      404         {object}  response.ErrorEnvelope
// @Failure      409         {object}  response.ErrorEnvelope
// @Router       /playlists/{playlistId}/videos/{videoId} [post]
func (h *PlaylistHandler) AddVideo(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	playlist, err := h.service.AddVideo(c.Request().Context(), user.ID, c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, playlist, "video added to playlist")
}

// @Summary      Remove a video from a playlist
// @Tags         playlists
// @Produce      json
// @Security     BearerAuth
// @Param        playlistId  path      string  true  "Playlist id"
// @Param        videoId     path      string  true  "Video id"
// @Success      200         {object}  response.Envelope{data=domain.Playlist}
// @Failure      403         {object}  response.ErrorEnvelope
// @Failure      404         {object}  response.ErrorEnvelope
// @Router       /playlists/{playlistId}/videos/{videoId} [delete]
func (h *PlaylistHandler) RemoveVideo(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	playlist, err := h.service.RemoveVideo(c.Request().Context(), user.ID, c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, playlist, "video removed from playlist")
}
