package law

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel is an ordered severity. The zero value is Low.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (r RiskLevel) String() string {
	if r < RiskLow || r > RiskCritical {
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
	return riskNames[r]
}

// ParseRiskLevel accepts the level names case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	for i, name := range riskNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return RiskLevel(i), nil
		}
	}
	return RiskLow, fmt.Errorf("unknown risk level %q (want low, medium, high or critical)", s)
}

// AtLeast reports whether r is as severe as other or worse.
func (r RiskLevel) AtLeast(other RiskLevel) bool { return r >= other }

// Escalate moves one level up, saturating at Critical.
func (r RiskLevel) Escalate() RiskLevel {
	if r >= RiskCritical {
		return RiskCritical
	}
	return r + 1
}

func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// MarshalText lets yaml and toml encoders render the level by name.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
