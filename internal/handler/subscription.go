package handler

import (
	"StreamHub/internal/dto"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler interface {
	ToggleSubscription(c *gin.Context)
	GetChannelSubscribers(c *gin.Context)
	GetSubscribedChannels(c *gin.Context)
}

type subscriptionHandler struct {
	subscriptionService service.SubscriptionService
	composer            view.Composer
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, composer view.Composer) SubscriptionHandler {
	return &subscriptionHandler{subscriptionService: subscriptionService, composer: composer}
}

func (h *subscriptionHandler) ToggleSubscription(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	channelID, ok := parseID(c, "channelId")
	if !ok {
		return
	}
	subscribed, err := h.subscriptionService.ToggleSubscription(c.Request.Context(), userID, channelID)
	if err != nil {
		handleError(c, err)
		return
	}
	message := "已取消订阅"
	if subscribed {
		message = "订阅成功"
	}
	sendResponse(c, http.StatusOK, dto.SubscriptionToggle{IsSubscribed: subscribed}, message)
}

// GetChannelSubscribers 某个频道的订阅者
func (h *subscriptionHandler) GetChannelSubscribers(c *gin.Context) {
	channelID, ok := parseID(c, "channelId")
	if !ok {
		return
	}
	result, err := h.composer.ListSubscribers(c.Request.Context(), channelID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取订阅者成功")
}

// GetSubscribedChannels 某个用户订阅的频道
func (h *subscriptionHandler) GetSubscribedChannels(c *gin.Context) {
	subscriberID, ok := parseID(c, "subscriberId")
	if !ok {
		return
	}
	result, err := h.composer.ListSubscriptions(c.Request.Context(), subscriberID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取订阅频道成功")
}
