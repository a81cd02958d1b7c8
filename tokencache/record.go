package tokencache

import "time"

// Kind identifies one of the two cache slots.
type Kind int

const (
	// Public is the slot for the read-only viewer token.
	Public Kind = iota
	// Internal is the slot for the privileged read/write token.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "public"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a slot.
type State int

const (
	// StateEmpty means the slot holds no usable record.
	StateEmpty State = iota
	// StateValid means the slot holds a record that has not expired.
	StateValid
	// StateRefreshing means a refresh for the slot is in flight.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateValid:
		return "valid"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Record is an issued bearer token with its validity window.
// Records are values; callers receive copies and cannot alter cached state.
type Record struct {
	// BearerValue is the opaque access token.
	BearerValue string

	// IssuedAt is when the record was minted.
	IssuedAt time.Time

	// ExpiresIn is the validity reported by the issuer, in seconds.
	ExpiresIn int64

	// ExpiresAt is IssuedAt + ExpiresIn.
	ExpiresAt time.Time
}

// ValidAt reports whether the record is still usable at now.
func (r Record) ValidAt(now time.Time) bool {
	return r.BearerValue != "" && now.Before(r.ExpiresAt)
}

// RemainingSeconds returns the whole seconds left before expiry at now, never negative.
func (r Record) RemainingSeconds(now time.Time) int64 {
	remaining := r.ExpiresAt.Sub(now) / time.Second
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}

func newRecord(bearer string, issuedAt time.Time, expiresIn int64) Record {
	return Record{
		BearerValue: bearer,
		IssuedAt:    issuedAt,
		ExpiresIn:   expiresIn,
		ExpiresAt:   issuedAt.Add(time.Duration(expiresIn) * time.Second),
	}
}
