/*
Package factory provides JSON to Go configuration conversion for the
leave engine.

PURPOSE:
  Lets HR tune the policy table and rule constants without code changes:
  per-type allocations, document/approval requirements, the rule
  ceilings, and the working-week definition all load from one JSON file.

JSON SCHEMA:
  {
    "week_policy": "mon_fri",
    "rules": {
      "max_consecutive_days": 5,
      "weekend_cap_per_period": 2,
      "team_capacity_ceiling": "0.49"
    },
    "types": {
      "vacation": {
        "label": "Vacation",
        "annual_allocation": "12",
        "semi_annual": true,
        "category": "standard"
      },
      "sick": {
        "label": "Sick Leave",
        "annual_allocation": "10",
        "requires_admin_approval": true,
        "requires_document": true,
        "category": "standard"
      }
    }
  }

  Amounts are JSON strings so fractional allocations survive without
  float rounding.

USAGE:
  cfg, err := factory.Load("./leave-config.json")
  validator := leave.NewValidator(leave.NewCalculator(cfg.Week), cfg.Policies, cfg.Rules)

SEE ALSO:
  - leave/types.go: TypePolicy and the built-in default table
  - leave/validate.go: RuleConfig
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type ConfigJSON struct {
	WeekPolicy string                    `json:"week_policy,omitempty"`
	Rules      *RulesJSON                `json:"rules,omitempty"`
	Types      map[string]TypePolicyJSON `json:"types,omitempty"`
}

type RulesJSON struct {
	MaxConsecutiveDays  int    `json:"max_consecutive_days,omitempty"`
	WeekendCapPerPeriod int    `json:"weekend_cap_per_period,omitempty"`
	TeamCapacityCeiling string `json:"team_capacity_ceiling,omitempty"`
}

type TypePolicyJSON struct {
	Label                 string `json:"label"`
	AnnualAllocation      string `json:"annual_allocation"`
	SemiAnnual            bool   `json:"semi_annual,omitempty"`
	RequiresAdminApproval bool   `json:"requires_admin_approval,omitempty"`
	RequiresDocument      bool   `json:"requires_document,omitempty"`
	Category              string `json:"category,omitempty"`
}

// =============================================================================
// CONFIG - Resolved engine configuration
// =============================================================================

type Config struct {
	Week     leave.WeekPolicy
	Rules    leave.RuleConfig
	Policies leave.PolicySet
}

// Default returns the built-in configuration: default policy table,
// canonical rule constants, Monday-Friday week.
func Default() Config {
	return Config{
		Week:     leave.MonFriWeek{},
		Rules:    leave.DefaultRuleConfig(),
		Policies: leave.DefaultPolicySet(),
	}
}

// Load reads a JSON config file and overlays it on the defaults.
// Unknown leave types in the file are an error: a typo in a type name
// must not silently create a dead policy.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse converts raw JSON into a resolved Config.
func Parse(data []byte) (Config, error) {
	var raw ConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("invalid config JSON: %w", err)
	}

	cfg := Default()
	if raw.WeekPolicy != "" {
		cfg.Week = leave.WeekPolicyByName(raw.WeekPolicy)
	}

	if raw.Rules != nil {
		if raw.Rules.MaxConsecutiveDays > 0 {
			cfg.Rules.MaxConsecutiveDays = raw.Rules.MaxConsecutiveDays
		}
		if raw.Rules.WeekendCapPerPeriod > 0 {
			cfg.Rules.WeekendCapPerPeriod = raw.Rules.WeekendCapPerPeriod
		}
		if raw.Rules.TeamCapacityCeiling != "" {
			ceiling, err := decimal.NewFromString(raw.Rules.TeamCapacityCeiling)
			if err != nil {
				return Config{}, fmt.Errorf("invalid team_capacity_ceiling %q: %w",
					raw.Rules.TeamCapacityCeiling, err)
			}
			cfg.Rules.TeamCapacityCeiling = ceiling
		}
	}

	for name, tj := range raw.Types {
		t := leave.Type(name)
		if _, known := cfg.Policies[t]; !known {
			return Config{}, fmt.Errorf("unknown leave type %q in config", name)
		}
		policy, err := toTypePolicy(tj)
		if err != nil {
			return Config{}, fmt.Errorf("leave type %q: %w", name, err)
		}
		cfg.Policies[t] = policy
	}

	return cfg, nil
}

func toTypePolicy(tj TypePolicyJSON) (leave.TypePolicy, error) {
	allocation, err := decimal.NewFromString(tj.AnnualAllocation)
	if err != nil {
		return leave.TypePolicy{}, fmt.Errorf("invalid annual_allocation %q: %w",
			tj.AnnualAllocation, err)
	}
	if allocation.IsNegative() {
		return leave.TypePolicy{}, fmt.Errorf("annual_allocation %q is negative", tj.AnnualAllocation)
	}

	category := leave.CategoryStandard
	if tj.Category == string(leave.CategorySpecial) {
		category = leave.CategorySpecial
	}

	return leave.TypePolicy{
		Label:                 tj.Label,
		AnnualAllocation:      allocation,
		SemiAnnual:            tj.SemiAnnual,
		RequiresAdminApproval: tj.RequiresAdminApproval,
		RequiresDocument:      tj.RequiresDocument,
		Category:              category,
	}, nil
}
