package tui

// historyLoadedMsg signals the initial history load finished. A non-empty
// err carries the surfaced last error after the retry schedule ran out.
type historyLoadedMsg struct {
	err error
}

// sendDoneMsg signals one send round-trip finished; the controller already
// holds the updated conversation either way.
type sendDoneMsg struct {
	err error
}

// clearedMsg signals the conversation was cleared.
type clearedMsg struct {
	err error
}
