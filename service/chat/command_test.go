package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "create room",
			raw:  `{"arg":"CREATEROOM","room":"lobby"}`,
			want: Command{Verb: VerbCreateRoom, Room: "lobby"},
		},
		{
			name: "lowercase verb normalized",
			raw:  `{"arg":"joinroom","room":"lobby"}`,
			want: Command{Verb: VerbJoinRoom, Room: "lobby"},
		},
		{
			name: "room trimmed, msg kept verbatim",
			raw:  `{"arg":"SENDMSG","room":"  lobby  ","msg":"  hi  "}`,
			want: Command{Verb: VerbSendMsg, Room: "lobby", Msg: "  hi  "},
		},
		{
			name: "quit",
			raw:  `{"arg":"QUIT"}`,
			want: Command{Verb: VerbQuit},
		},
		{
			name: "list rooms",
			raw:  `{"arg":"LISTROOMS"}`,
			want: Command{Verb: VerbListRooms},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty frame", raw: ""},
		{name: "whitespace frame", raw: "   \n"},
		{name: "not json", raw: "hello"},
		{name: "missing arg", raw: `{"room":"lobby"}`},
		{name: "unknown verb", raw: `{"arg":"DESTROYROOM","room":"lobby"}`},
		{name: "array not object", raw: `["SENDMSG"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand([]byte(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestCommandHasMsg(t *testing.T) {
	assert.False(t, Command{Msg: "   "}.HasMsg())
	assert.False(t, Command{}.HasMsg())
	assert.True(t, Command{Msg: "hi"}.HasMsg())
}
