package domain

// StatusKind is one of the order statuses the exchange documents.
type StatusKind int

const (
	StatusOpen StatusKind = iota + 1
	StatusClosed
	StatusCancelled
	StatusPending
	StatusError
	StatusInsufficientBalance
)

const (
	statusStringOpen                = "open"
	statusStringClosed              = "closed"
	statusStringCancelled           = "cancelled"
	statusStringPending             = "pending"
	statusStringError               = "error"
	statusStringInsufficientBalance = "insufficient_balance"
)

var statusKinds = map[string]StatusKind{
	statusStringOpen:                StatusOpen,
	statusStringClosed:              StatusClosed,
	statusStringCancelled:           StatusCancelled,
	statusStringPending:             StatusPending,
	statusStringError:               StatusError,
	statusStringInsufficientBalance: StatusInsufficientBalance,
}

// String returns the wire token of the status.
func (k StatusKind) String() string {
	switch k {
	case StatusOpen:
		return statusStringOpen
	case StatusClosed:
		return statusStringClosed
	case StatusCancelled:
		return statusStringCancelled
	case StatusPending:
		return statusStringPending
	case StatusError:
		return statusStringError
	case StatusInsufficientBalance:
		return statusStringInsufficientBalance
	default:
		return "unknown"
	}
}

// OrderStatus is either a known StatusKind or some other status string the
// exchange started sending later. The raw token is always kept.
type OrderStatus struct {
	kind StatusKind
	raw  string
}

// ParseOrderStatus never fails: tokens outside the known set pass through as-is.
func ParseOrderStatus(raw string) OrderStatus {
	return OrderStatus{kind: statusKinds[raw], raw: raw}
}

// Known returns the status kind and true when the token is one of the known ones.
func (s OrderStatus) Known() (StatusKind, bool) {
	return s.kind, s.kind != 0
}

// IsKnown reports whether the status belongs to the documented set.
func (s OrderStatus) IsKnown() bool {
	return s.kind != 0
}

// Raw returns the status token exactly as received.
func (s OrderStatus) Raw() string {
	return s.raw
}

func (s OrderStatus) String() string {
	return s.raw
}

// MarshalText implements encoding.TextMarshaler.
func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.raw), nil
}
