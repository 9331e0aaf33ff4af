package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldBusy = "E_WORLD_BUSY"

	// Rule/action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoPermission  = "E_NO_PERMISSION"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrConflict      = "E_CONFLICT"
	ErrInternal      = "E_INTERNAL"

	// Tube network.
	ErrInvalidPlacement = "E_INVALID_PLACEMENT"
	ErrDuplicateName    = "E_DUPLICATE_NAME"
	ErrUnknownStation   = "E_UNKNOWN_STATION"
	ErrAlreadyBound     = "E_ALREADY_BOUND"
	ErrTooFar           = "E_TOO_FAR"
	ErrInvalidIndex     = "E_INVALID_INDEX"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrWorldBusy:        {},
	ErrBadRequest:       {},
	ErrNoPermission:     {},
	ErrInvalidTarget:    {},
	ErrConflict:         {},
	ErrInternal:         {},
	ErrInvalidPlacement: {},
	ErrDuplicateName:    {},
	ErrUnknownStation:   {},
	ErrAlreadyBound:     {},
	ErrTooFar:           {},
	ErrInvalidIndex:     {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
