package rules

import "errors"

// Sentinel errors for rule set lookup and validation.
var (
	ErrUnknownRuleSet = errors.New("unknown rule set")
	ErrInvalidRuleSet = errors.New("invalid rule set")
)
