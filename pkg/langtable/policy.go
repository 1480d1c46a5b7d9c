package langtable

import (
	"errors"
	"fmt"
)

// JoinPolicy controls which bridge titles survive the merge.
type JoinPolicy int

const (
	// JoinInner keeps only bridge titles present in every language map.
	// This is the default: an alignment dataset with gaps in it is rarely
	// what the caller wants.
	JoinInner JoinPolicy = iota

	// JoinOuter keeps every observed bridge title and marks gaps with
	// Absent. Meant for coverage diagnostics, never substituted silently.
	JoinOuter
)

// String returns the CLI spelling of the policy.
func (p JoinPolicy) String() string {
	switch p {
	case JoinInner:
		return "inner"
	case JoinOuter:
		return "outer"
	default:
		return fmt.Sprintf("JoinPolicy(%d)", int(p))
	}
}

// ParseJoinPolicy maps a CLI value to a JoinPolicy.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch s {
	case "inner":
		return JoinInner, nil
	case "outer":
		return JoinOuter, nil
	default:
		return 0, fmt.Errorf("%w: unknown join policy %q (must be \"inner\" or \"outer\")", ErrInvalidConfig, s)
	}
}

var (
	// ErrNoCorrespondence reports that an inner join produced no rows:
	// not one bridge title was shared by all requested languages. This is
	// an explicit outcome, distinct from a successfully written empty
	// table, because it almost always means a mismatched or empty dump.
	ErrNoCorrespondence = errors.New("no correspondence found across requested languages")

	// ErrInvalidConfig reports an unusable language/bridge/policy
	// combination. The merge must not run at all in this case.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidateConfig rejects configurations the merge must not run with:
// fewer than two languages, duplicate language codes, a bridge code that is
// also a requested language, or an unknown policy.
func ValidateConfig(codes []string, bridge string, policy JoinPolicy) error {
	if policy != JoinInner && policy != JoinOuter {
		return fmt.Errorf("%w: unknown join policy %v", ErrInvalidConfig, policy)
	}
	if bridge == "" {
		return fmt.Errorf("%w: empty bridge language code", ErrInvalidConfig)
	}
	if len(codes) < 2 {
		return fmt.Errorf("%w: need at least two languages, got %d", ErrInvalidConfig, len(codes))
	}
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if code == "" {
			return fmt.Errorf("%w: empty language code", ErrInvalidConfig)
		}
		if code == bridge {
			return fmt.Errorf("%w: bridge language %q also requested as a column", ErrInvalidConfig, bridge)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: language %q requested twice", ErrInvalidConfig, code)
		}
		seen[code] = struct{}{}
	}
	return nil
}
