package store

// Message is one chat thread entry.
type Message struct {
	Message string `json:"message"`
	Author  string `json:"author"`
}

// Chat is the persisted chat record for one document id. Messages are
// append-only from the application's perspective.
type Chat struct {
	Messages []Message `json:"messages"`
}

// Append adds msgs at the end of the thread.
func (c *Chat) Append(msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
}
