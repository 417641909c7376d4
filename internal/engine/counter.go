package engine

import (
	"context"
	"fmt"
)

// Counter keys in the settings document. lastId predates the prefixed
// counters and mirrors the standard one; it is kept for older clients and
// zeroed alongside the others on a full reset.
const (
	PrefixStandard   = "ORD-"
	PrefixSpecial    = "S-"
	legacyCounterKey = "lastId"
)

var counterKeys = []string{PrefixStandard, PrefixSpecial, legacyCounterKey}

// MintOrderNumber allocates the next human-readable order number from the
// persisted counters. Standard orders advance the legacy counter in lockstep.
func (e *Engine) MintOrderNumber(ctx context.Context, special bool) (string, error) {
	if special {
		n, err := e.Store.NextSequence(ctx, PrefixSpecial)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s%d", PrefixSpecial, n), nil
	}

	n, err := e.Store.NextSequence(ctx, PrefixStandard, legacyCounterKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", PrefixStandard, n), nil
}
