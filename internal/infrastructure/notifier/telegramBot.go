package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"deals_bot/internal/domain/entity"
	"deals_bot/pkg/logx"
)

type rates interface {
	Rate(ctx context.Context) float64
}

// TelegramBot publishes deals to the channel.
type TelegramBot struct {
	bot    *telego.Bot
	chatID telego.ChatID
	rates  rates
}

func NewTelegramBot(bot *telego.Bot, chatID telego.ChatID, rates rates) *TelegramBot {
	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
		rates:  rates,
	}
}

// SendDeal posts a qualified deal and returns the channel message ID. Deals
// with an image go out as a photo with caption, falling back to plain text
// when Telegram rejects the image URL.
func (b *TelegramBot) SendDeal(ctx context.Context, deal entity.Deal) (int64, error) {
	text := dealMessage(deal, b.rates.Rate(ctx))
	keyboard := dealKeyboard(deal)

	if deal.ImageURL != "" {
		photo := tu.Photo(b.chatID, tu.FileFromURL(deal.ImageURL)).
			WithCaption(text).
			WithParseMode(telego.ModeHTML)
		if keyboard != nil {
			photo = photo.WithReplyMarkup(keyboard)
		}

		msg, err := b.bot.SendPhoto(ctx, photo)
		if err == nil {
			return int64(msg.MessageID), nil
		}

		logger(ctx).Warn(
			"failed to send photo, falling back to text",
			slog.String(logx.FieldProduct, deal.Product.Name),
			logx.Error(err),
		)
	}

	params := tu.Message(b.chatID, text).WithParseMode(telego.ModeHTML)
	if keyboard != nil {
		params = params.WithReplyMarkup(keyboard)
	}

	msg, err := b.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}

	return int64(msg.MessageID), nil
}

// SendSummary posts the still-active deals digest.
func (b *TelegramBot) SendSummary(ctx context.Context, deals []entity.SentDeal) error {
	msg := tu.Message(b.chatID, summaryMessage(deals, time.Now())).
		WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	return nil
}

// SendText posts a plain text message to the channel.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	if _, err := b.bot.SendMessage(ctx, tu.Message(b.chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func dealKeyboard(deal entity.Deal) *telego.InlineKeyboardMarkup {
	var row []telego.InlineKeyboardButton

	if strings.HasPrefix(deal.AffiliateLink, "http") {
		row = append(row, tu.InlineKeyboardButton("🛒 Comprar").WithURL(deal.AffiliateLink))
	}

	if strings.HasPrefix(deal.Product.ReviewLink, "http") {
		row = append(row, tu.InlineKeyboardButton("📺 Review").WithURL(deal.Product.ReviewLink))
	}

	if len(row) == 0 {
		return nil
	}

	return tu.InlineKeyboard(tu.InlineKeyboardRow(row...))
}
