// Package bot is the Telegram surface of the ledger. It parses quick
// entries and commands, delegates to the ledger and report layers and
// renders pt-BR replies. No business rules live here.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"afinance/internal/core"
	"afinance/internal/ledger"
	"afinance/internal/report"
)

const welcomeText = "👋 *Bem-vindo ao AFinance*\n\n" +
	"✅ Você pode registrar pelo modo rápido:\n" +
	"• `gasto 12 uber`\n" +
	"• `entrada 300 freelancer`\n" +
	"• `salario 5000 clt`\n\n" +
	"Comandos:\n" +
	"• /stats — resumo do mês atual\n" +
	"• /historico — resumo mês a mês\n" +
	"• /comparar — comparação mês a mês\n" +
	"• /relatorio — relatório do mês passado\n" +
	"• /extrato — últimos lançamentos\n" +
	"• /apagar ID — apaga um lançamento"

type Bot struct {
	tb      *tele.Bot
	ledger  *ledger.Service
	reports *report.Engine
	loc     *time.Location
}

func New(token string, svc *ledger.Service, reports *report.Engine, loc *time.Location) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	b := &Bot{tb: tb, ledger: svc, reports: reports, loc: loc}
	b.routes()
	return b, nil
}

func (b *Bot) routes() {
	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/stats", b.handleStats)
	b.tb.Handle("/historico", b.handleHistory)
	b.tb.Handle("/comparar", b.handleCompare)
	b.tb.Handle("/relatorio", b.handleLastMonthReport)
	b.tb.Handle("/extrato", b.handleStatement)
	b.tb.Handle("/apagar", b.handleDelete)
	b.tb.Handle(tele.OnText, b.handleQuickEntry)
}

// Start begins long polling and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		b.tb.Stop()
	}()
	slog.Info("telegram bot polling")
	b.tb.Start()
}

func (b *Bot) dispatch(cmd string, c tele.Context) error {
	switch cmd {
	case "/start":
		return b.handleStart(c)
	case "/stats":
		return b.handleStats(c)
	case "/historico":
		return b.handleHistory(c)
	case "/comparar":
		return b.handleCompare(c)
	case "/extrato":
		return b.handleStatement(c)
	case "/relatorio":
		return b.handleLastMonthReport(c)
	}
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(welcomeText, tele.ModeMarkdown)
}

// shortcuts lets bare words work like their slash commands.
var shortcuts = map[string]string{
	"start":     "/start",
	"stats":     "/stats",
	"stat":      "/stats",
	"historico": "/historico",
	"histórico": "/historico",
	"hist":      "/historico",
	"comparar":  "/comparar",
	"compara":   "/comparar",
	"extrato":   "/extrato",
	"relatorio": "/relatorio",
	"relatório": "/relatorio",
}

func (b *Bot) handleQuickEntry(c tele.Context) error {
	entry, recognized, err := ParseQuickEntry(c.Text())
	if !recognized {
		if cmd, ok := shortcuts[strings.ToLower(strings.TrimSpace(c.Text()))]; ok {
			return b.dispatch(cmd, c)
		}
		// Not an entry at all: stay quiet, like any other chatter.
		return nil
	}
	if err != nil {
		return c.Reply("❌ Valor inválido. Ex: `gasto 12 uber`", tele.ModeMarkdown)
	}

	res, err := b.ledger.Record(context.Background(), c.Sender().ID, entry.Kind, entry.AmountCents, entry.Description, time.Now())
	if err != nil {
		slog.Error("recording entry", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui registrar agora. Tente de novo.")
	}
	if res.CompanionErr != nil {
		slog.Warn("salary companion failed",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("error", res.CompanionErr.Error()))
	}

	return c.Reply(formatRecorded(res.Transaction, res.Companion), tele.ModeMarkdown)
}

func (b *Bot) handleStats(c tele.Context) error {
	p := core.PeriodOf(time.Now(), b.loc)
	r, err := b.reports.MonthlyReport(context.Background(), c.Sender().ID, p)
	if err != nil {
		slog.Error("building stats", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui montar o resumo agora.")
	}
	return c.Send(FormatReport("Resumo do mês", r), tele.ModeMarkdown)
}

func (b *Bot) handleLastMonthReport(c tele.Context) error {
	p := core.PeriodOf(time.Now(), b.loc).Prev()
	r, err := b.reports.MonthlyReport(context.Background(), c.Sender().ID, p)
	if err != nil {
		slog.Error("building report", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui montar o relatório agora.")
	}
	return c.Send(FormatReport("Relatório Mensal", r), tele.ModeMarkdown)
}

// handleHistory shows the month-by-month summary; with a "YYYY-MM"
// argument it lists that month's transactions instead.
func (b *Bot) handleHistory(c tele.Context) error {
	if args := c.Args(); len(args) > 0 {
		p, err := core.ParsePeriod(args[0])
		if err != nil {
			return c.Reply("❌ Mês inválido. Ex: `/historico 2026-03`", tele.ModeMarkdown)
		}
		items, err := b.reports.MonthTransactions(context.Background(), c.Sender().ID, p)
		if err != nil {
			slog.Error("listing month transactions", slog.String("error", err.Error()))
			return c.Reply("❌ Não consegui montar o histórico agora.")
		}
		return c.Send(formatMonthHistory(p, items), tele.ModeMarkdown)
	}

	summaries, err := b.reports.History(context.Background(), c.Sender().ID)
	if err != nil {
		slog.Error("building history", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui montar o histórico agora.")
	}
	return c.Send(formatHistory(summaries), tele.ModeMarkdown)
}

func (b *Bot) handleCompare(c tele.Context) error {
	cmp, twoMonths, err := b.reports.CompareLatest(context.Background(), c.Sender().ID)
	if err != nil {
		slog.Error("comparing months", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui comparar agora.")
	}
	if cmp.PeriodA.IsZero() {
		return c.Send("📭 Nenhum registro encontrado ainda.")
	}
	return c.Send(formatComparison(cmp, twoMonths), tele.ModeMarkdown)
}

func (b *Bot) handleStatement(c tele.Context) error {
	limit := 0
	if args := c.Args(); len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			limit = n
		}
	}

	items, err := b.ledger.Recent(context.Background(), c.Sender().ID, limit)
	if err != nil {
		slog.Error("listing statement", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui buscar o extrato agora.")
	}
	return c.Send(formatStatement(items, b.loc), tele.ModeMarkdown)
}

func (b *Bot) handleDelete(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Reply("Use: `/apagar ID`\nEx: `/apagar 12`", tele.ModeMarkdown)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("❌ ID inválido. Ex: `/apagar 12`", tele.ModeMarkdown)
	}

	deleted, err := b.ledger.Delete(context.Background(), c.Sender().ID, id)
	if err != nil {
		slog.Error("deleting entry", slog.String("error", err.Error()))
		return c.Reply("❌ Não consegui apagar agora.")
	}
	if !deleted {
		return c.Reply("❌ Não encontrei esse ID (ou ele não pertence a você).")
	}
	return c.Reply(fmt.Sprintf("✅ Lançamento #%d apagado com sucesso.", id))
}

// Notifier sends alert and report texts through the Telegram API. It
// satisfies the delivery interfaces of the alert and worker layers.
type Notifier struct {
	tb *tele.Bot
}

// NewNotifier builds a standalone notifier from a bot token, for
// processes that deliver messages without handling updates.
func NewNotifier(token string) (*Notifier, error) {
	tb, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("creating telegram notifier: %w", err)
	}
	return &Notifier{tb: tb}, nil
}

func (n *Notifier) Send(_ context.Context, userID int64, text string) error {
	_, err := n.tb.Send(&tele.User{ID: userID}, text, tele.ModeMarkdown)
	if err != nil {
		return fmt.Errorf("sending telegram message to %d: %w", userID, err)
	}
	return nil
}
