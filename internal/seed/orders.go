// Package seed generates the synthetic customer support dataset: orders
// spanning three years with realistic date clustering, plus the knowledge
// base articles. Everything is written through the MCP database server so
// seeding exercises the same path the agent uses.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/matiasleandrokruk/acmedesk/internal/mcpbridge"
)

// Invoker is the subset of the MCP bridge used by the seeder.
type Invoker interface {
	Invoke(operation string, arguments map[string]any) mcpbridge.Result
}

// statuses are drawn with uniform probability.
var statuses = []string{"shipped", "processing", "canceled", "returned", "refunded", "delivered"}

// trackingBase is the suffix of the first tracking number; subsequent orders
// increment from here.
const trackingBase = 123456784

// historyDays is how far back the first order date lies.
const historyDays = 1095

const dateLayout = "2006-01-02"

// Order is one synthetic order row.
type Order struct {
	ID                string
	Status            string
	Tracking          string
	EstimatedDelivery string
	OrderDate         string
}

// OrderID formats a sequence number as ORD-00001 style.
func OrderID(n int) string {
	return fmt.Sprintf("ORD-%05d", n)
}

// TrackingNumber formats a UPS-style tracking number, 1Z999AA10123456784
// for the first order and counting up from there.
func TrackingNumber(n int) string {
	return fmt.Sprintf("1Z999AA10%09d", trackingBase+n-1)
}

// Generator produces deterministic synthetic orders given a seeded rng.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// NewGenerator creates a generator anchored at now.
func NewGenerator(now time.Time, rng *rand.Rand) *Generator {
	return &Generator{rng: rng, now: now}
}

// Orders generates total orders. Dates cluster: every 250-300 consecutive
// orders share a date, then the date advances one day, starting three
// years before the generator's anchor. Estimated delivery is the order
// date plus 1-15 days.
func (g *Generator) Orders(total int) []Order {
	dates := g.orderDates(total)

	out := make([]Order, total)
	for i := 0; i < total; i++ {
		n := i + 1
		orderDate := dates[i]
		delivery := orderDate.AddDate(0, 0, 1+g.rng.Intn(15))

		out[i] = Order{
			ID:                OrderID(n),
			Status:            statuses[g.rng.Intn(len(statuses))],
			Tracking:          TrackingNumber(n),
			EstimatedDelivery: delivery.Format(dateLayout),
			OrderDate:         orderDate.Format(dateLayout),
		}
	}
	return out
}

func (g *Generator) orderDates(total int) []time.Time {
	current := g.now.AddDate(0, 0, -historyDays)
	dates := make([]time.Time, 0, total)

	onCurrent := 0
	perDate := g.batchSize()
	for i := 0; i < total; i++ {
		dates = append(dates, current)
		onCurrent++
		if onCurrent >= perDate {
			current = current.AddDate(0, 0, 1)
			onCurrent = 0
			perDate = g.batchSize()
		}
	}
	return dates
}

func (g *Generator) batchSize() int {
	return 250 + g.rng.Intn(51) // 250-300 inclusive
}

// insertStatement renders a multi-row INSERT for one batch of orders.
func insertStatement(batch []Order) string {
	var b strings.Builder
	b.WriteString("INSERT INTO orders (order_id, status, tracking, estimated_delivery, order_date) VALUES ")
	for i, o := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "('%s', '%s', '%s', '%s', '%s')",
			o.ID, o.Status, o.Tracking, o.EstimatedDelivery, o.OrderDate)
	}
	return b.String()
}
