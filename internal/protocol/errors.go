package protocol

const (
	OkSelected   = "OK_SELECTED"
	OkLinkedHome = "OK_LINKED_HOME"
	OkLinkedJob  = "OK_LINKED_JOB"

	// Bind attempted before any agent was selected.
	ErrNoSelection = "E_NO_SELECTION"
	// Selection names an agent that is gone.
	ErrStale = "E_STALE"
	// Clicked block is neither a bed nor a workstation.
	ErrNotBindable = "E_NOT_BINDABLE"
	// A second delivery of a click that was already consumed.
	ErrDuplicate = "E_DUPLICATE"
	// Default effect denied without any linker side effect (off-hand, bed enter).
	ErrDenied = "E_DENIED"
)

var knownCodes = map[string]struct{}{
	OkSelected:     {},
	OkLinkedHome:   {},
	OkLinkedJob:    {},
	ErrNoSelection: {},
	ErrStale:       {},
	ErrNotBindable: {},
	ErrDuplicate:   {},
	ErrDenied:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
