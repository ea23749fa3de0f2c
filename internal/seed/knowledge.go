package seed

import (
	"fmt"
	"strings"
)

// Article is one knowledge base entry matched by keyword.
type Article struct {
	Keyword string
	Body    string
}

// KnowledgeArticles returns the support articles the agent searches.
func KnowledgeArticles() []Article {
	return []Article{
		{"return", "Return Policy: Items can be returned within 30 days of delivery. Visit our returns portal or contact support to initiate a return."},
		{"shipping", "Shipping Information: Standard shipping takes 5-7 business days. Express shipping takes 2-3 business days. Free shipping on orders over $50."},
		{"refund", "Refund Process: Refunds are processed within 5-10 business days after we receive your return. The refund will be issued to your original payment method."},
		{"tracking", "Tracking Your Order: You can track your order using the tracking number provided in your shipping confirmation email."},
	}
}

func articleInsertStatement(articles []Article) string {
	var b strings.Builder
	b.WriteString("INSERT INTO knowledge_base (keyword, article) VALUES ")
	for i, a := range articles {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "('%s', '%s')", escape(a.Keyword), escape(a.Body))
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
