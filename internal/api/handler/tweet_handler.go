package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/ports"
)

type TweetHandler struct {
	service ports.TweetService
}

func NewTweetHandler(service ports.TweetService) *TweetHandler {
	return &TweetHandler{service: service}
}

type tweetRequest struct {
	Content string `json:"content" validate:"required"`
}

// @Summary      Post a tweet
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      tweetRequest  true  "Tweet"
// @Success      201   {object}  response.Envelope{data=domain.Tweet}
// @Failure      400   {object}  response.ErrorEnvelope
// @Router       /tweets [post]
func (h *TweetHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req tweetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tweet, err := h.service.Create(c.Request().Context(), user.ID, req.Content)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusCreated, tweet, "tweet created successfully")
}

// @Summary      List my tweets
// @Tags         tweets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]domain.Tweet}
// @Router       /tweets/mine [get]
func (h *TweetHandler) ListMine(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	tweets, err := h.service.ListMine(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, tweets, "tweets fetched successfully")
}

// @Summary      Update a tweet
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tweetId  path      string        true  "Tweet id"
// @Param        body     body      tweetRequest  true  "Tweet"
// @Success      200      {object}  response.Envelope{data=domain.Tweet}
// @Failure      403      {object}  response.ErrorEnvelope
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /tweets/{tweetId} [patch]
func (h *TweetHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req tweetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tweet, err := h.service.Update(c.Request().Context(), user.ID, c.Param("tweetId"), req.Content)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, tweet, "tweet updated successfully")
}

// @Summary      Delete a tweet
// @Tags         tweets
// @Produce      json
// @Security     BearerAuth
// @Param        tweetId  path      string  true  "Tweet id"
// @Success      200      {object}  response.Envelope
// @Failure      403      {object}  response.ErrorEnvelope
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /tweets/{tweetId} [delete]
func (h *TweetHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user.ID, c.Param("tweetId")); err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, struct{}{}, "tweet deleted successfully")
}
