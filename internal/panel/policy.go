package panel

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// PendingPolicy decides what happens when the user submits again while a
// previous request is still outstanding.
type PendingPolicy int

const (
	// PendingBlock rejects new submits until the outstanding reply arrives.
	PendingBlock PendingPolicy = iota
	// PendingAllow lets requests overlap; replies render in arrival order.
	PendingAllow
	// PendingDropStale lets requests overlap but renders only the reply to
	// the most recent submit.
	PendingDropStale
)

func (p PendingPolicy) String() string {
	switch p {
	case PendingBlock:
		return "block"
	case PendingAllow:
		return "allow"
	case PendingDropStale:
		return "drop-stale"
	default:
		return fmt.Sprintf("PendingPolicy(%d)", int(p))
	}
}

// ParsePendingPolicy accepts the names produced by String. An empty value
// selects PendingBlock.
func ParsePendingPolicy(raw string) (PendingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "block":
		return PendingBlock, nil
	case "allow":
		return PendingAllow, nil
	case "drop-stale", "drop_stale", "dropstale":
		return PendingDropStale, nil
	default:
		return PendingBlock, errors.Errorf("unknown pending policy %q", raw)
	}
}

// ResetPolicy decides whether a non-2xx reset response is reported.
type ResetPolicy int

const (
	// ResetAlertOnError alerts only when the reset request itself fails.
	// A non-2xx answer leaves the view as it is, silently.
	ResetAlertOnError ResetPolicy = iota
	// ResetAlertOnNonOK alerts on transport errors and on non-2xx answers.
	ResetAlertOnNonOK
)

func (p ResetPolicy) String() string {
	switch p {
	case ResetAlertOnError:
		return "alert-on-error"
	case ResetAlertOnNonOK:
		return "alert-on-non-ok"
	default:
		return fmt.Sprintf("ResetPolicy(%d)", int(p))
	}
}
