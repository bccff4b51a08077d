package notifier

import (
	"fmt"
	"strings"
	"time"

	"deals_bot/internal/domain/entity"
)

const maxTitleLen = 200

// FormatBRL renders a price the Brazilian way: "R$ 1.234,56".
func FormatBRL(price float64) string {
	s := fmt.Sprintf("%.2f", price)

	intPart, fracPart, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var sb strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}

	grouped := sb.String()
	if neg {
		grouped = "-" + grouped
	}

	return "R$ " + grouped + "," + fracPart
}

// dealMessage renders the channel post for a qualified deal. HTML parse mode.
func dealMessage(deal entity.Deal, rate float64) string {
	title := deal.Title
	if title == "" {
		title = deal.Product.Name
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	// The headline prices carry import tax; the secondary pair shows the
	// sticker prices for comparison.
	currentBase := deal.CurrentPrice * rate
	if strings.EqualFold(deal.ListedCurrency, "BRL") {
		currentBase = deal.CurrentPrice
	}

	originalBase := deal.Product.BasePrice
	if originalBase <= 0 {
		originalBase = deal.OriginalPrice / 1.5
	}

	lines := []string{
		"🔥 <b>OFERTA!</b> 🔥",
		"",
		fmt.Sprintf("📦 <b>%s</b>", title),
		"",
		"💰 <b>Preço com impostos (BRL):</b>",
		fmt.Sprintf("   <s>%s</s> → <b>%s</b>", FormatBRL(deal.OriginalPrice), FormatBRL(deal.CurrentLanded)),
		"",
		"💵 <i>Preço sem impostos (BRL):</i>",
		fmt.Sprintf("   <s>%s</s> → %s", FormatBRL(originalBase), FormatBRL(currentBase)),
		"",
		fmt.Sprintf("📉 <b>%.0f%% OFF</b>", deal.DiscountPercent),
		"",
	}

	if tags := categoryTags(deal.Product); tags != "" {
		lines = append(lines, "🏷️ "+tags, "")
	}

	if desc := deal.Product.Description; desc != "" && len(desc) < 200 {
		lines = append(lines, fmt.Sprintf("📝 <i>%s</i>", desc), "")
	}

	lines = append(lines,
		fmt.Sprintf("🛒 <a href=\"%s\">COMPRAR AGORA</a>", deal.AffiliateLink),
		"",
		fmt.Sprintf("⏰ Verificado: %s", deal.CheckedAt.Format("02/01 15:04")),
	)

	return strings.Join(lines, "\n")
}

const summaryMaxPerCategory = 5

// summaryMessage renders the still-active deals digest grouped by category.
func summaryMessage(deals []entity.SentDeal, now time.Time) string {
	if len(deals) == 0 {
		return "📋 <b>Resumo de Ofertas</b>\n\nNenhuma oferta ativa no momento."
	}

	lines := []string{
		"📋 <b>OFERTAS AINDA ATIVAS!</b>",
		fmt.Sprintf("📅 %s", now.Format("02/01/2006 15:04")),
		"",
		fmt.Sprintf("🔥 <b>%d ofertas encontradas:</b>", len(deals)),
		"",
	}

	var categories []string
	byCategory := make(map[string][]entity.SentDeal)
	for _, deal := range deals {
		category := deal.Category
		if category == "" {
			category = "Outros"
		}
		if _, ok := byCategory[category]; !ok {
			categories = append(categories, category)
		}
		byCategory[category] = append(byCategory[category], deal)
	}

	for _, category := range categories {
		categoryDeals := byCategory[category]

		lines = append(lines, fmt.Sprintf("<b>📁 %s</b>", category))

		shown := categoryDeals
		if len(shown) > summaryMaxPerCategory {
			shown = shown[:summaryMaxPerCategory]
		}

		for _, deal := range shown {
			name := deal.ProductName
			if len(name) > 40 {
				name = name[:40] + "..."
			}

			lines = append(lines,
				fmt.Sprintf("  • %s", name),
				fmt.Sprintf("    💰 %s (-%.0f%%) • %s atrás", FormatBRL(deal.DealPrice), deal.DiscountPercent, ageLabel(deal)),
				fmt.Sprintf("    🔗 <a href=\"%s\">Ver oferta</a>", deal.AffiliateLink),
			)
		}

		if len(categoryDeals) > summaryMaxPerCategory {
			lines = append(lines, fmt.Sprintf("    <i>+ %d mais...</i>", len(categoryDeals)-summaryMaxPerCategory))
		}

		lines = append(lines, "")
	}

	lines = append(lines, "💡 <i>Ofertas podem expirar a qualquer momento!</i>")

	return strings.Join(lines, "\n")
}

func ageLabel(deal entity.SentDeal) string {
	hours := deal.AgeHours()
	if hours < 24 {
		return fmt.Sprintf("%dh", int(hours))
	}
	return fmt.Sprintf("%dd", int(hours/24))
}

func categoryTags(p entity.Product) string {
	var parts []string
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	if p.Section != "" {
		parts = append(parts, p.Section)
	}
	return strings.Join(parts, " • ")
}
