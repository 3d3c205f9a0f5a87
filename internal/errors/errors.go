package derr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRuleMatched is a soft error: no active shipping profile matched
	// any line item of an order. The estimate stays null so the dashboard
	// can flag the order rather than guess a cost.
	ErrNoRuleMatched = errors.New("no shipping rule matched")
)

// ConfigurationError reports a shipping profile whose cost rule is missing a
// required parameter for its declared type. It is raised at calculation time
// and never silently defaulted.
type ConfigurationError struct {
	RuleID   string
	RuleName string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("misconfigured shipping rule %q (%s): %s", e.RuleName, e.RuleID, e.Reason)
}

// IsConfiguration returns true if err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
