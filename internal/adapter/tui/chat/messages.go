// Package chat is the Bubble Tea front end: the agents, chat and resources
// panels over one chat store.
package chat

// StateChangedMsg tells the model the store applied an action. The model
// re-reads the whole snapshot, so a dropped or reordered message only
// delays a repaint.
type StateChangedMsg struct {
	Seq uint64
}

// TypingDoneMsg ends the short input lock after a submit. Gen matches the
// submit that started it so an older timer cannot unlock a newer submit.
type TypingDoneMsg struct {
	Gen uint64
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
