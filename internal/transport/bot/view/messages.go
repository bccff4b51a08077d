// Package view holds the admin bot reply texts.
package view

import (
	"fmt"
	"time"

	"deals_bot/internal/worker"
)

const StartMessage = `👋 <b>Bot de ofertas AliExpress</b>

Comandos disponíveis:
/status - estado do monitor
/check - rodar uma verificação agora
/summary - publicar o resumo de ofertas ativas no canal
/setdiscount &lt;percent&gt; - mudar o desconto mínimo`

// Status renders the /status reply.
func Status(running bool, minDiscount float64, last worker.RunStats, lastAt time.Time, hasLast bool) string {
	state := "🟢 ocioso"
	if running {
		state = "🔄 verificando agora"
	}

	text := fmt.Sprintf(`📊 <b>Status do monitor</b>

🔍 <b>Verificação:</b> %s
📉 <b>Desconto mínimo:</b> %.1f%%`, state, minDiscount)

	if hasLast {
		text += fmt.Sprintf(`

🕐 <b>Última verificação:</b> %s
  • produtos: %d
  • ofertas: %d
  • enviadas: %d`,
			lastAt.Format("02/01 15:04"),
			last.ProductsChecked,
			last.DealsFound,
			last.DealsSent,
		)
	}

	return text
}

// CheckResult renders the reply for a finished /check run.
func CheckResult(stats worker.RunStats) string {
	return fmt.Sprintf(`✅ <b>Verificação concluída</b> (%.1fs)

  • produtos verificados: %d
  • ofertas encontradas: %d
  • ofertas enviadas: %d`,
		stats.Duration.Seconds(),
		stats.ProductsChecked,
		stats.DealsFound,
		stats.DealsSent,
	)
}
