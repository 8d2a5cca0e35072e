package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"afinance/internal/core"
)

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		name string
		d    core.Delta
		want string
	}{
		{"increase", core.Delta{AbsCents: 5000, Pct: core.PercentChange{Value: 50}}, "⬆️ +50.0%"},
		{"decrease", core.Delta{AbsCents: -2500, Pct: core.PercentChange{Value: -25}}, "⬇️ -25.0%"},
		{"no change", core.Delta{}, "➡️ 0.0%"},
		{"infinite", core.Delta{AbsCents: 5000, Pct: core.PercentChange{Infinite: true}}, "⬆️ ∞"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDelta(tt.d))
		})
	}
}

func TestFormatRecordedExpense(t *testing.T) {
	got := formatRecorded(core.Transaction{
		Kind:        core.KindExpense,
		Amount:      core.Money{Cents: 3550},
		Category:    "Alimentação",
		Description: "almoço",
		OccurredAt:  time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		Tag:         "#A1f3c9D",
	}, nil)

	assert.Contains(t, got, "Gasto anotado!")
	assert.Contains(t, got, "almoço")
	assert.Contains(t, got, "Alimentação")
	assert.Contains(t, got, "R$ 35,50")
	assert.Contains(t, got, "10/03/2026")
	assert.Contains(t, got, "#A1f3c9D")
}

func TestFormatRecordedSalaryWithCompanion(t *testing.T) {
	salary := core.Transaction{
		Kind:        core.KindSalary,
		Amount:      core.Money{Cents: 500_000},
		Category:    "Salário",
		Description: "clt",
		OccurredAt:  time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC),
		Tag:         "#Aab123D",
	}
	companion := core.Transaction{
		Kind:   core.KindExpense,
		Amount: core.Money{Cents: 80_000},
	}

	got := formatRecorded(salary, &companion)
	assert.Contains(t, got, "Entrada anotada!")
	assert.Contains(t, got, "Investir - R$ 800,00 (16.0%)")
}

func TestFormatReport(t *testing.T) {
	r := core.Report{
		Period:       core.Period{Year: 2026, Month: time.March},
		Totals:       core.Totals{IncomeCents: 500_000, ExpenseCents: 320_000, InvestmentCents: 80_000},
		BalanceCents: 180_000,
		TopCategories: []core.CategoryTotal{
			{Category: "Alimentação", Cents: 120_000},
			{Category: "Transporte", Cents: 60_000},
		},
	}

	got := FormatReport("Resumo do mês", r)
	assert.Contains(t, got, "Março/2026")
	assert.Contains(t, got, "Entradas: R$ 5.000,00")
	assert.Contains(t, got, "Gastos Totais: R$ 3.200,00")
	assert.Contains(t, got, "Investimentos: R$ 800,00")
	assert.Contains(t, got, "Saldo: R$ 1.800,00")
	assert.Contains(t, got, "• Alimentação: R$ 1.200,00")
}

func TestFormatReportEmpty(t *testing.T) {
	r := core.Report{Period: core.Period{Year: 2026, Month: time.January}, Empty: true}
	got := FormatReport("Relatório Mensal", r)
	assert.Contains(t, got, "Janeiro/2026")
	assert.Contains(t, got, "Não há registros nesse mês.")
	assert.NotContains(t, got, "Saldo")
}

func TestFormatComparisonSingleMonth(t *testing.T) {
	cmp := core.Comparison{
		PeriodA: core.Period{Year: 2026, Month: time.March},
		TotalsA: core.Totals{IncomeCents: 100_000},
	}
	got := formatComparison(cmp, false)
	assert.Contains(t, got, "Março/2026")
	assert.Contains(t, got, "2 meses")
	assert.NotContains(t, got, "vs")
}

func TestFormatComparisonTwoMonths(t *testing.T) {
	cmp := core.Comparison{
		PeriodA: core.Period{Year: 2026, Month: time.March},
		PeriodB: core.Period{Year: 2026, Month: time.February},
		TotalsA: core.Totals{IncomeCents: 150_000, ExpenseCents: 60_000},
		TotalsB: core.Totals{IncomeCents: 100_000, ExpenseCents: 80_000},
		Income:  core.DeltaOf(150_000, 100_000),
		Expense: core.DeltaOf(60_000, 80_000),
		Balance: core.DeltaOf(90_000, 20_000),
	}
	got := formatComparison(cmp, true)
	assert.Contains(t, got, "*Março/2026* vs *Fevereiro/2026*")
	assert.Contains(t, got, "⬆️ +50.0%")
	assert.Contains(t, got, "⬇️ -25.0%")
	assert.Contains(t, got, "Detalhe do mês anterior")
}

func TestFormatStatement(t *testing.T) {
	items := []core.Transaction{
		{
			ID:          12,
			Kind:        core.KindExpense,
			Amount:      core.Money{Cents: 1200},
			Category:    "Transporte",
			Description: "uber",
			OccurredAt:  time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC),
		},
	}
	got := formatStatement(items, time.UTC)
	assert.Contains(t, got, "#12 • 10/03 • 💸 Gasto")
	assert.Contains(t, got, "uber (Transporte)")
	assert.Contains(t, got, "/apagar ID")

	empty := formatStatement(nil, time.UTC)
	assert.Contains(t, empty, "ainda não tem lançamentos")
}

func TestFormatMonthHistory(t *testing.T) {
	p := core.Period{Year: 2026, Month: time.March}
	items := []core.Transaction{
		{Kind: core.KindExpense, Amount: core.Money{Cents: 1200}, Category: "Transporte", Description: "uber"},
		{Kind: core.KindSalary, Amount: core.Money{Cents: 500_000}, Category: "Salário", Description: "clt"},
	}

	got := formatMonthHistory(p, items)
	assert.Contains(t, got, "Histórico 03/2026")
	assert.Contains(t, got, "• Gasto: R$ 12,00 — uber (Transporte)")
	assert.Contains(t, got, "• Entrada: R$ 5.000,00 — clt (Salário)")

	empty := formatMonthHistory(p, nil)
	assert.Contains(t, empty, "Nenhuma transação encontrada.")
}
