package ussd

import "strings"

type ScreenType int

const (
	Continue ScreenType = iota
	Terminal
)

// Screen is one reply to the menu gateway.
type Screen struct {
	Type ScreenType
	Text string
}

func continueWith(lines ...string) Screen {
	return Screen{Type: Continue, Text: strings.Join(lines, "\n")}
}

func end(lines ...string) Screen {
	return Screen{Type: Terminal, Text: strings.Join(lines, "\n")}
}

// String renders the gateway wire form: "CON ..." or "END ...".
func (s Screen) String() string {
	if s.Type == Continue {
		return "CON " + s.Text
	}
	return "END " + s.Text
}
