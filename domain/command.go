package domain

// Command is the closed set of inbound intents a connection can submit
// over its transport. The unexported marker keeps the set sealed so the
// dispatch switch in the coordinator stays exhaustive.
type Command interface {
	isCommand()
}

// AuthenticateCommand binds the connection to the identity proven by its
// session. The declared user must match the session owner.
type AuthenticateCommand struct {
	UserID      string
	DisplayName string
}

type JoinConversationCommand struct {
	ConversationID string
}

type LeaveConversationCommand struct {
	ConversationID string
}

type SendMessageCommand struct {
	ConversationID   string
	Content          string
	MessageType      MessageType
	EncryptedContent string
	EncryptionIV     string
}

type TypingStartCommand struct {
	ConversationID string
}

type TypingStopCommand struct {
	ConversationID string
}

type MarkAsReadCommand struct {
	ConversationID string
	MessageID      string
}

func (AuthenticateCommand) isCommand()      {}
func (JoinConversationCommand) isCommand()  {}
func (LeaveConversationCommand) isCommand() {}
func (SendMessageCommand) isCommand()       {}
func (TypingStartCommand) isCommand()       {}
func (TypingStopCommand) isCommand()        {}
func (MarkAsReadCommand) isCommand()        {}

// Envelope converts the send intent into persistence input. Encrypted
// submissions carry ciphertext in EncryptedContent; the envelope keeps a
// single content field either way.
func (c SendMessageCommand) Envelope() EnvelopeInput {
	input := EnvelopeInput{
		ConversationID: c.ConversationID,
		Content:        c.Content,
		MessageType:    c.MessageType,
	}
	if c.EncryptedContent != "" {
		input.Content = c.EncryptedContent
		input.EncryptionIV = c.EncryptionIV
		input.IsEncrypted = true
	}
	return input
}
