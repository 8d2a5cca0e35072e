package bot

import (
	"fmt"
	"strings"

	"afinance/internal/core"
)

// quickKinds maps the words and single-letter shortcuts accepted by the
// quick entry protocol onto transaction kinds.
var quickKinds = map[string]core.Kind{
	"gasto":   core.KindExpense,
	"g":       core.KindExpense,
	"entrada": core.KindIncome,
	"e":       core.KindIncome,
	"salario": core.KindSalary,
	"s":       core.KindSalary,
}

// QuickEntry is a parsed quick-entry message like "gasto 35,50 almoço".
type QuickEntry struct {
	Kind        core.Kind
	AmountCents int64
	Description string
}

// ParseQuickEntry parses a free-text message against the quick entry
// protocol. Messages that do not look like an entry at all (commands,
// fewer than three fields, unknown leading word) return ok=false with no
// error so chatter is silently ignored; a recognized entry with a bad
// amount returns an error the caller should surface.
func ParseQuickEntry(text string) (QuickEntry, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "/") {
		return QuickEntry{}, false, nil
	}

	fields := strings.Fields(text)
	if len(fields) < 3 {
		return QuickEntry{}, false, nil
	}

	kind, ok := quickKinds[strings.ToLower(fields[0])]
	if !ok {
		return QuickEntry{}, false, nil
	}

	cents, err := core.ParseAmountToCents(fields[1])
	if err != nil {
		return QuickEntry{}, true, fmt.Errorf("invalid amount %q: %w", fields[1], err)
	}

	description := strings.Join(fields[2:], " ")
	return QuickEntry{Kind: kind, AmountCents: cents, Description: description}, true, nil
}
