package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"deals_bot/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnCheck, th.CommandEqual("check"))
	adminGroup.HandleMessage(h.OnSummary, th.CommandEqual("summary"))
	adminGroup.HandleMessage(h.OnSetDiscount, th.CommandEqual("setdiscount"))
}
