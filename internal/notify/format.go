package notify

import (
	"fmt"
	"math"
	"strings"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders events as Telegram HTML messages.
type Formatter struct {
	// ShowFullAddress disables the 0xabcd...1234 shortening.
	ShowFullAddress bool
}

func (f Formatter) address(addr string) string {
	if f.ShowFullAddress {
		return addr
	}
	return domain.ShortAddress(addr)
}

// Format renders one event. It returns "" for events that have no
// Telegram representation.
func (f Formatter) Format(event domain.Event) string {
	switch event.Type {
	case domain.EventBalanceChanged:
		return f.formatChange(event)
	case domain.EventLowBalance:
		return f.formatLowBalance(event)
	case domain.EventRecovered:
		return f.formatRecovered(event)
	case domain.EventDailyDiff:
		return f.formatDailyDiff(event)
	default:
		return ""
	}
}

func (f Formatter) header(title string, e domain.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "📍 <b>%s</b> (%s)\n", e.Alias, e.Network)
	fmt.Fprintf(&b, "<code>%s</code>\n\n", f.address(e.Address))
	return b.String()
}

func (f Formatter) formatChange(event domain.Event) string {
	e := event.Entity
	var b strings.Builder
	b.WriteString(f.header("🔔 <b>Balance Alert</b>", e))

	emoji, sign := "📈", "+"
	if event.New.LessThan(event.Old) {
		emoji, sign = "📉", ""
	}
	diff := event.New.Sub(event.Old).Abs()
	percent := domain.PercentChange(event.Old, event.New)

	fmt.Fprintf(&b, "💰 <b>%s</b>\n", e.Asset())
	if math.Abs(percent) >= 0.01 {
		fmt.Fprintf(&b, "%s <b>%s%s</b> (%+.2f%%)\n", emoji, sign, diff, percent)
	} else {
		fmt.Fprintf(&b, "%s <b>%s%s</b>\n", emoji, sign, diff)
	}
	fmt.Fprintf(&b, "%s → %s\n", event.Old, event.New)
	return b.String()
}

func (f Formatter) formatLowBalance(event domain.Event) string {
	e := event.Entity
	var b strings.Builder
	b.WriteString(f.header("⚠️ <b>Low Balance</b>", e))
	fmt.Fprintf(&b, "💰 <b>%s</b>: %s (threshold %s)\n", e.Asset(), event.Balance, event.Threshold)
	if event.AlertNumber > 1 {
		fmt.Fprintf(&b, "Alert #%d, still below threshold\n", event.AlertNumber)
	}
	return b.String()
}

func (f Formatter) formatRecovered(event domain.Event) string {
	e := event.Entity
	var b strings.Builder
	b.WriteString(f.header("✅ <b>Balance Recovered</b>", e))
	fmt.Fprintf(&b, "💰 <b>%s</b>: %s\n", e.Asset(), event.Balance)
	return b.String()
}

func (f Formatter) formatDailyDiff(event domain.Event) string {
	var b strings.Builder
	b.WriteString("📊 <b>Daily Balance Report</b>\n\n")

	for _, d := range event.Deltas {
		e := d.Entity
		fmt.Fprintf(&b, "📍 <b>%s</b> (%s) %s\n", e.Alias, e.Network, e.Asset())
		fmt.Fprintf(&b, "<code>%s</code>\n", f.address(e.Address))
		fmt.Fprintf(&b, "%s → %s (%s)\n\n", d.Start, d.Current, signedDelta(d.Delta))
	}

	if len(event.Deltas) == 0 {
		b.WriteString("No movement since the last report.\n")
	}
	return b.String()
}

func signedDelta(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + d.String()
	}
	return d.String()
}
