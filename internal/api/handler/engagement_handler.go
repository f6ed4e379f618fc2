package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/response"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

// LikeHandler toggles likes on videos, comments and tweets.
type LikeHandler struct {
	service ports.LikeService
}

func NewLikeHandler(service ports.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

// @Summary      Toggle a like on a video
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        videoId  path      string  true  "Video id"
// @Success      201      {object}  response.Envelope{data=domain.LikeToggle}
// @Success      200      {object}  response.Envelope{data=domain.LikeToggle}
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /likes/video/{videoId} [post]
func (h *LikeHandler) ToggleVideo(c echo.Context) error {
	return h.toggle(c, domain.LikeVideo, "videoId")
}

// @Summary      Toggle a like on a comment
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        commentId  path      string  true  "Comment id"
// @Success      201        {object}  response.Envelope{data=domain.LikeToggle}
// @Success      200        {object}  response.Envelope{data=domain.LikeToggle}
// @Failure      404        {object}  response.ErrorEnvelope
// @Router       /likes/comment/{commentId} [post]
func (h *LikeHandler) ToggleComment(c echo.Context) error {
	return h.toggle(c, domain.LikeComment, "commentId")
}

// @Summary      Toggle a like on a tweet
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        tweetId  path      string  true  "Tweet id"
// @Success      201      {object}  response.Envelope{data=domain.LikeToggle}
// @Success      200      {object}  response.Envelope{data=domain.LikeToggle}
// @Failure      404      {object}  response.ErrorEnvelope
// @Router       /likes/tweet/{tweetId} [post]
func (h *LikeHandler) ToggleTweet(c echo.Context) error {
	return h.toggle(c, domain.LikeTweet, "tweetId")
}

// toggle answers 201 when a like was created and 200 when one was removed.
func (h *LikeHandler) toggle(c echo.Context, kind domain.LikeTargetKind, param string) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	result, err := h.service.Toggle(c.Request().Context(), user.ID, domain.LikeTarget{Kind: kind, ID: c.Param(param)})
	if err != nil {
		return err
	}
	if result.Liked {
		return response.JSON(c, http.StatusCreated, result, string(kind)+" liked")
	}
	return response.JSON(c, http.StatusOK, result, string(kind)+" unliked")
}

// @Summary      List liked videos
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]domain.Video}
// @Router       /likes/videos [get]
func (h *LikeHandler) LikedVideos(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	videos, err := h.service.LikedVideos(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, videos, "liked videos fetched successfully")
}

// SubscriptionHandler serves channel subscriptions.
type SubscriptionHandler struct {
	service ports.SubscriptionService
}

func NewSubscriptionHandler(service ports.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Toggle subscribes the caller to a channel, or unsubscribes when already
// subscribed.
//
// @Summary      Toggle a subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        channelId  path      string  true  "Channel (user) id"
// @Success      201        {object}  response.Envelope{data=domain.SubscriptionToggle}
// @Success      200        {object}  response.Envelope{data=domain.SubscriptionToggle}
// @Failure      400        {object}  response.ErrorEnvelope
// @Failure      404        {object}  response.ErrorEnvelope
// @Router       /subscriptions/channel/{channelId} [post]
func (h *SubscriptionHandler) Toggle(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	result, err := h.service.Toggle(c.Request().Context(), user.ID, c.Param("channelId"))
	if err != nil {
		return err
	}
	if result.Subscribed {
		return response.JSON(c, http.StatusCreated, result, "subscribed successfully")
	}
	return response.JSON(c, http.StatusOK, result, "unsubscribed successfully")
}

// @Summary      List channel subscribers
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        channelId  path      string  true  "Channel (user) id"
// @Success      200        {object}  response.Envelope{data=[]domain.SubscriptionView}
// @Failure      404        {object}  response.ErrorEnvelope
// @Router       /subscriptions/channel/{channelId} [get]
func (h *SubscriptionHandler) Subscribers(c echo.Context) error {
	subs, err := h.service.Subscribers(c.Request().Context(), c.Param("channelId"))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, subs, "subscribers fetched successfully")
}

// @Summary      List subscribed channels
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        subscriberId  path      string  true  "Subscriber (user) id"
// @Success      200           {object}  response.Envelope{data=[]domain.SubscriptionView}
// @Failure      404           {object}  response.ErrorEnvelope
// @Router       /subscriptions/subscriber/{subscriberId} [get]
func (h *SubscriptionHandler) SubscribedChannels(c echo.Context) error {
	subs, err := h.service.SubscribedChannels(c.Request().Context(), c.Param("subscriberId"))
	if err != nil {
		return err
	}
	return response.JSON(c, http.StatusOK, subs, "subscribed channels fetched successfully")
}
