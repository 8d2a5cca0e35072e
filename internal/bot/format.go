package bot

import (
	"fmt"
	"strings"
	"time"

	"afinance/internal/core"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func monthName(p core.Period) string {
	return fmt.Sprintf("%s/%d", monthNames[int(p.Month)-1], p.Year)
}

func brl(cents int64) string {
	return core.Money{Cents: cents}.BRL()
}

// formatDelta renders a month-over-month change as "⬆️ +12.3%", with the
// infinite sentinel shown as "⬆️ ∞" when the reference month had nothing.
func formatDelta(d core.Delta) string {
	if d.Pct.Infinite {
		return "⬆️ ∞"
	}
	arrow := "➡️"
	sign := ""
	switch {
	case d.AbsCents > 0:
		arrow = "⬆️"
		sign = "+"
	case d.AbsCents < 0:
		arrow = "⬇️"
	}
	return fmt.Sprintf("%s %s%.1f%%", arrow, sign, d.Pct.Value)
}

func formatRecorded(t core.Transaction, companion *core.Transaction) string {
	label := "Gasto anotado!"
	if t.Kind.IsIncome() {
		label = "Entrada anotada!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ *%s*\n\n", label)
	fmt.Fprintf(&b, "📝 %s _(%s)_\n", t.Description, t.Category)
	fmt.Fprintf(&b, "💸 %s\n", brl(t.Amount.Cents))
	if companion != nil {
		pct := float64(companion.Amount.Cents) / float64(t.Amount.Cents) * 100
		fmt.Fprintf(&b, "📈 Investir - %s (%.1f%%)\n", brl(companion.Amount.Cents), pct)
	}
	fmt.Fprintf(&b, "🗓️ %s - %s", t.OccurredAt.Format("02/01/2006"), t.Tag)
	return b.String()
}

// FormatReport renders a monthly report in the standard pt-BR layout.
// The scheduled monthly report job reuses it.
func FormatReport(title string, r core.Report) string {
	if r.Empty {
		return fmt.Sprintf("📅 *%s*\n\n🗓️ %s\nℹ️ Não há registros nesse mês.", title, monthName(r.Period))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s*\n\n🗓️ %s\n\n", title, monthName(r.Period))
	fmt.Fprintf(&b, "💰 Entradas: %s\n", brl(r.Totals.IncomeCents))
	fmt.Fprintf(&b, "💸 Gastos Totais: %s\n", brl(r.Totals.ExpenseCents))
	fmt.Fprintf(&b, "📈 Investimentos: %s\n", brl(r.Totals.InvestmentCents))
	fmt.Fprintf(&b, "💼 Saldo: %s\n", brl(r.BalanceCents))

	if len(r.TopCategories) > 0 {
		b.WriteString("\n🏷️ *Principais Gastos:*\n")
		for _, g := range r.TopCategories {
			fmt.Fprintf(&b, "• %s: %s\n", g.Category, brl(g.Cents))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatComparison renders the month-over-month view. With a single
// recorded month (twoMonths false) only that month's totals are shown,
// plus a hint to come back with more history.
func formatComparison(cmp core.Comparison, twoMonths bool) string {
	var b strings.Builder
	b.WriteString("📈 *Comparação mês a mês*\n\n")

	if !twoMonths {
		fmt.Fprintf(&b, "🗓️ *%s*\n", monthName(cmp.PeriodA))
		fmt.Fprintf(&b, "💰 Entradas: %s\n", brl(cmp.TotalsA.IncomeCents))
		fmt.Fprintf(&b, "💸 Gastos: %s\n", brl(cmp.TotalsA.ExpenseCents))
		fmt.Fprintf(&b, "📈 Investimentos: %s\n", brl(cmp.TotalsA.InvestmentCents))
		fmt.Fprintf(&b, "💼 Saldo: %s\n\n", brl(cmp.TotalsA.BalanceCents()))
		b.WriteString("ℹ️ Registre dados em pelo menos *2 meses* para comparar.")
		return b.String()
	}

	fmt.Fprintf(&b, "🗓️ *%s* vs *%s*\n\n", monthName(cmp.PeriodA), monthName(cmp.PeriodB))
	fmt.Fprintf(&b, "💰 Entradas: %s  (%s)\n", brl(cmp.TotalsA.IncomeCents), formatDelta(cmp.Income))
	fmt.Fprintf(&b, "💸 Gastos: %s  (%s)\n", brl(cmp.TotalsA.ExpenseCents), formatDelta(cmp.Expense))
	fmt.Fprintf(&b, "📈 Investimentos: %s  (%s)\n", brl(cmp.TotalsA.InvestmentCents), formatDelta(cmp.Investment))
	fmt.Fprintf(&b, "💼 Saldo: %s  (%s)\n\n", brl(cmp.TotalsA.BalanceCents()), formatDelta(cmp.Balance))
	fmt.Fprintf(&b, "🔎 *Detalhe do mês anterior*\n• %s: Entradas %s | Gastos %s | Inv %s | Saldo %s",
		monthName(cmp.PeriodB),
		brl(cmp.TotalsB.IncomeCents),
		brl(cmp.TotalsB.ExpenseCents),
		brl(cmp.TotalsB.InvestmentCents),
		brl(cmp.TotalsB.BalanceCents()))
	return b.String()
}

func formatStatement(items []core.Transaction, loc *time.Location) string {
	if len(items) == 0 {
		return "📄 *Extrato*\n\nℹ️ Você ainda não tem lançamentos."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📄 *Extrato* (últimos %d)\n\n", len(items))
	for _, t := range items {
		fmt.Fprintf(&b, "#%d • %s • %s\n", t.ID, t.OccurredAt.In(loc).Format("02/01"), kindLabel(t.Kind))
		fmt.Fprintf(&b, "📝 %s (%s)\n", t.Description, t.Category)
		fmt.Fprintf(&b, "💸 %s\n\n", brl(t.Amount.Cents))
	}
	b.WriteString("🧹 Para apagar: `/apagar ID` (ex: `/apagar 12`)")
	return b.String()
}

const monthHistoryLimit = 20

func formatMonthHistory(p core.Period, items []core.Transaction) string {
	header := fmt.Sprintf("%02d/%04d", int(p.Month), p.Year)
	if len(items) == 0 {
		return fmt.Sprintf("📅 *Histórico %s*\n\nNenhuma transação encontrada.", header)
	}
	if len(items) > monthHistoryLimit {
		items = items[:monthHistoryLimit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Histórico %s* (últimas %d)\n\n", header, len(items))
	for _, t := range items {
		label := "Gasto"
		if t.Kind.IsIncome() {
			label = "Entrada"
		}
		fmt.Fprintf(&b, "• %s: %s — %s (%s)\n", label, brl(t.Amount.Cents), t.Description, t.Category)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHistory(summaries []core.MonthlySummary) string {
	if len(summaries) == 0 {
		return "📅 *Histórico mensal*\n\nℹ️ Nenhuma transação encontrada."
	}

	var b strings.Builder
	b.WriteString("📅 *Histórico mensal*\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "🗓️ *%s*\n", monthName(s.Period))
		fmt.Fprintf(&b, "💰 %s | 💸 %s | 📈 %s | 💼 %s\n\n",
			brl(s.Totals.IncomeCents),
			brl(s.Totals.ExpenseCents),
			brl(s.Totals.InvestmentCents),
			brl(s.Totals.BalanceCents()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func kindLabel(k core.Kind) string {
	switch k {
	case core.KindExpense:
		return "💸 Gasto"
	case core.KindSalary, core.KindIncome:
		return "💰 Entrada"
	}
	return string(k)
}
