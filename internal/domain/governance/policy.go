// Package governance enforces tool-usage policy on completed model responses.
// The gate runs in the serving layer, upstream of tool execution: a response
// that requests a denylisted tool is rejected as a whole before any of its
// tools run. The denylist is authoritative for blocking; the allowlist exists
// for documentation and audit output only.
package governance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the static governance tables. Both tables are read-only after
// construction; no synchronization is needed to consult them.
type Policy struct {
	// Denylist maps an operation name to the human-readable rejection reason
	// returned to the caller.
	Denylist map[string]string `yaml:"denylist"`

	// Allowlist names the operations considered safe. Not consulted for the
	// allow/deny decision.
	Allowlist []string `yaml:"allowlist"`
}

// DefaultPolicy returns the built-in policy used when no policy file is
// configured.
func DefaultPolicy() Policy {
	return Policy{
		Denylist: map[string]string{
			"refund_order":         "Refund operations require human approval. Please escalate to a supervisor.",
			"delete_customer_data": "Data deletion requires compliance review.",
			"update_pricing":       "Pricing changes require manager approval.",
		},
		Allowlist: []string{
			"get_order_status",
			"search_knowledge_base",
			"get_customer_info",
			"create_support_ticket",
		},
	}
}

// LoadPolicy reads a YAML policy file. A missing denylist or allowlist
// section falls back to the corresponding built-in table, so a partial file
// overriding just one table is valid.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("governance: read policy file %q: %w", path, err)
	}

	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("governance: parse policy file %q: %w", path, err)
	}

	defaults := DefaultPolicy()
	if p.Denylist == nil {
		p.Denylist = defaults.Denylist
	}
	if p.Allowlist == nil {
		p.Allowlist = defaults.Allowlist
	}
	return p, nil
}
