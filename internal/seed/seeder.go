package seed

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

// DefaultOrderCount matches the size of the original synthetic dataset.
const DefaultOrderCount = 10000

// insertBatchSize is how many order rows go into a single INSERT statement.
const insertBatchSize = 500

const ordersSchema = `CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	tracking TEXT,
	estimated_delivery TEXT NOT NULL,
	order_date TEXT NOT NULL
)`

const knowledgeSchema = `CREATE TABLE IF NOT EXISTS knowledge_base (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword TEXT NOT NULL,
	article TEXT NOT NULL
)`

// Seeder populates the support database through the MCP server's tools.
type Seeder struct {
	invoker Invoker
	out     io.Writer
}

// NewSeeder returns a seeder that writes progress to out.
func NewSeeder(invoker Invoker, out io.Writer) *Seeder {
	return &Seeder{invoker: invoker, out: out}
}

// Run creates and populates both support tables. The rng makes order
// generation reproducible in tests; use rand.New(rand.NewSource(time.Now().UnixNano()))
// for production seeding.
func (s *Seeder) Run(orderCount int, rng *rand.Rand) error {
	if err := s.SeedOrders(orderCount, rng); err != nil {
		return err
	}
	return s.SeedKnowledgeBase()
}

// SeedOrders creates the orders table and inserts orderCount synthetic rows.
func (s *Seeder) SeedOrders(orderCount int, rng *rand.Rand) error {
	if orderCount <= 0 {
		return fmt.Errorf("seed orders: count must be positive, got %d", orderCount)
	}

	if err := s.exec("create_table", ordersSchema); err != nil {
		return fmt.Errorf("seed orders: create table: %w", err)
	}

	gen := NewGenerator(time.Now(), rng)
	orders := gen.Orders(orderCount)

	inserted := 0
	for start := 0; start < len(orders); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(orders) {
			end = len(orders)
		}
		if err := s.exec("insert_data", insertStatement(orders[start:end])); err != nil {
			return fmt.Errorf("seed orders: insert batch at %d: %w", start, err)
		}
		inserted = end
		fmt.Fprintf(s.out, "seeded %d/%d orders\n", inserted, len(orders))
	}
	return nil
}

// SeedKnowledgeBase creates the knowledge_base table and inserts the articles.
func (s *Seeder) SeedKnowledgeBase() error {
	if err := s.exec("create_table", knowledgeSchema); err != nil {
		return fmt.Errorf("seed knowledge base: create table: %w", err)
	}
	if err := s.exec("insert_data", articleInsertStatement(KnowledgeArticles())); err != nil {
		return fmt.Errorf("seed knowledge base: insert: %w", err)
	}
	fmt.Fprintf(s.out, "seeded %d knowledge base articles\n", len(KnowledgeArticles()))
	return nil
}

func (s *Seeder) exec(operation, query string) error {
	result := s.invoker.Invoke(operation, map[string]any{"query": query})
	if !result.Success {
		return fmt.Errorf("%s failed: %s", operation, result.Message)
	}
	return nil
}
