package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Generation layer.
	ErrMissingDependency = "E_MISSING_DEPENDENCY"
	ErrEmptyPool         = "E_EMPTY_POOL"
	ErrSpawnFailed       = "E_SPAWN_FAILED"
	ErrInternal          = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrMissingDependency: {},
	ErrEmptyPool:         {},
	ErrSpawnFailed:       {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
