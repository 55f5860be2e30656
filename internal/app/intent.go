package app

// IntentKind names an abstract user action produced by key decoding.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentQuit
	IntentLeft
	IntentRight
	IntentUp
	IntentDown
	IntentNewTask
	IntentEditSelected
	IntentDeleteSelected
	IntentBeginMove
	IntentMoveToPrevColumn
	IntentConfirm
	IntentCancel
	IntentNextField
	IntentPrevField
	IntentRaisePriority
	IntentLowerPriority
	IntentAppendChar
	IntentBackspace
)

// Intent is one decoded key press. Char is set only for IntentAppendChar.
type Intent struct {
	Kind IntentKind
	Char rune
}

// Do returns a parameterless intent.
func Do(kind IntentKind) Intent {
	return Intent{Kind: kind}
}

// Char returns a character-append intent.
func Char(r rune) Intent {
	return Intent{Kind: IntentAppendChar, Char: r}
}
