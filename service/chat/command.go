package chat

import (
	"encoding/json"
	"strings"

	"NimbusChat/tools/errs"
)

// Verb is a normalized client command name.
type Verb string

const (
	VerbCreateRoom Verb = "CREATEROOM"
	VerbListRooms  Verb = "LISTROOMS"
	VerbJoinRoom   Verb = "JOINROOM"
	VerbSendMsg    Verb = "SENDMSG"
	VerbQuit       Verb = "QUIT"
)

// Command is one validated client instruction. Room is trimmed; Msg keeps the
// client's exact bytes (only its emptiness is ever checked).
type Command struct {
	Verb Verb
	Room string
	Msg  string
}

// clientFrame is the raw inbound shape: {"arg": "...", "room"?, "msg"?}.
type clientFrame struct {
	Arg  string `json:"arg"`
	Room string `json:"room"`
	Msg  string `json:"msg"`
}

// ParseCommand validates one client frame. Unknown verbs are rejected here
// and never reach an adapter.
func ParseCommand(raw []byte) (Command, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return Command{}, errs.ErrMalformedCommand.WithDetail("empty frame")
	}

	var f clientFrame
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return Command{}, errs.ErrMalformedCommand.WithDetail(err.Error())
	}

	verb := Verb(strings.ToUpper(strings.TrimSpace(f.Arg)))
	switch verb {
	case VerbCreateRoom, VerbListRooms, VerbJoinRoom, VerbSendMsg, VerbQuit:
	case "":
		return Command{}, errs.ErrMalformedCommand.WithDetail("missing arg")
	default:
		return Command{}, errs.ErrMalformedCommand.WithDetail("unknown verb " + string(verb))
	}

	return Command{
		Verb: verb,
		Room: strings.TrimSpace(f.Room),
		Msg:  f.Msg,
	}, nil
}

// HasMsg reports whether the message body carries any content.
func (c Command) HasMsg() bool {
	return strings.TrimSpace(c.Msg) != ""
}
