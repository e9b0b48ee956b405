// Package history holds the in-memory transcript of one adventure session.
package history

// Role identifies who produced a history entry.
type Role string

const (
	RolePlayer   Role = "player"
	RoleNarrator Role = "narrator"
)

// Entry is one line of the transcript.
type Entry struct {
	Role Role
	Text string
}

// History is an ordered, append-only transcript. It is never persisted.
type History []Entry

// With returns a copy of h with entries appended, leaving h untouched.
func (h History) With(entries ...Entry) History {
	out := make(History, 0, len(h)+len(entries))
	out = append(out, h...)
	return append(out, entries...)
}

// LastPlayerChoice returns the text of the final entry when it is a player
// entry.
func (h History) LastPlayerChoice() (string, bool) {
	if len(h) == 0 || h[len(h)-1].Role != RolePlayer {
		return "", false
	}
	return h[len(h)-1].Text, true
}
