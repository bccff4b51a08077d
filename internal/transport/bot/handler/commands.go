package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"deals_bot/internal/transport/bot/view"
	"deals_bot/internal/worker"
	"deals_bot/pkg/logx"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	last, lastAt, hasLast := h.scanner.LastRun()

	text := view.Status(
		h.scanner.IsRunning(),
		h.checker.MinDiscountPercent(),
		last,
		lastAt,
		hasLast,
	)

	return h.sendHTML(ctx, msg.Chat.ID, text)
}

// OnCheck runs a full check cycle right away and replies with its stats.
func (h *Handler) OnCheck(ctx *th.Context, msg telego.Message) error {
	if err := h.sendText(ctx, msg.Chat.ID, "🔍 Verificando ofertas..."); err != nil {
		return err
	}

	stats, err := h.scanner.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, worker.ErrRunInProgress) {
			return h.sendText(ctx, msg.Chat.ID, "⏳ Uma verificação já está em andamento.")
		}

		logger(ctx).Error("manual check failed", logx.Error(err))
		return h.sendText(ctx, msg.Chat.ID, fmt.Sprintf("❌ Falha na verificação: %v", err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.CheckResult(stats))
}

// OnSummary publishes the active deals digest to the channel.
func (h *Handler) OnSummary(ctx *th.Context, msg telego.Message) error {
	deals, err := h.history.ActiveDeals(ctx, h.summaryWindow)
	if err != nil {
		logger(ctx).Error("failed to load active deals", logx.Error(err))
		return h.sendText(ctx, msg.Chat.ID, "❌ Não foi possível carregar as ofertas ativas.")
	}

	if err := h.notifier.SendSummary(ctx, deals); err != nil {
		logger(ctx).Error("failed to send summary", logx.Error(err))
		return h.sendText(ctx, msg.Chat.ID, "❌ Falha ao publicar o resumo.")
	}

	return h.sendText(ctx, msg.Chat.ID, fmt.Sprintf("✅ Resumo publicado (%d ofertas).", len(deals)))
}

func (h *Handler) OnSetDiscount(ctx *th.Context, msg telego.Message) error {
	parts := strings.Fields(msg.Text)
	if len(parts) != 2 {
		return h.sendText(ctx, msg.Chat.ID, "Uso: /setdiscount <percentual>, ex: /setdiscount 15")
	}

	percent, err := strconv.ParseFloat(strings.TrimSuffix(parts[1], "%"), 64)
	if err != nil || percent <= 0 || percent >= 100 {
		return h.sendText(ctx, msg.Chat.ID, "O percentual deve ser um número entre 0 e 100.")
	}

	h.checker.SetDiscountThreshold(percent)

	return h.sendText(ctx, msg.Chat.ID, fmt.Sprintf("✅ Desconto mínimo ajustado para %.1f%%.", percent))
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}

func (h *Handler) sendText(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	return err
}
