package models

// Conversation is the append-only message log plus its fixed metadata.
// It is owned exclusively by one agent for the lifetime of one run and is
// never persisted. Keeping it a flat log makes turn rollback trivial:
// snapshot Len before the turn, TruncateTo on failure.
type Conversation struct {
	systemPrompt string
	model        string
	messages     []Message
}

// NewConversation creates a conversation with a fixed system prompt and model
// identifier. The system prompt is never mutated after initialization.
func NewConversation(systemPrompt, model string) *Conversation {
	return &Conversation{
		systemPrompt: systemPrompt,
		model:        model,
		messages:     make([]Message, 0),
	}
}

// SystemPrompt returns the system prompt text.
func (c *Conversation) SystemPrompt() string { return c.systemPrompt }

// Model returns the model identifier.
func (c *Conversation) Model() string { return c.model }

// Append adds messages to the end of the log.
func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the log so callers cannot mutate it.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// TruncateTo discards messages appended after the given snapshot length.
// A snapshot at or beyond the current length is a no-op.
func (c *Conversation) TruncateTo(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}
