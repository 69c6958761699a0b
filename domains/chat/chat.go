package chat

import (
	"context"
	"iter"
)

// SystemPrompt is prepended to every conversation; callers never supply it.
const SystemPrompt = "You are a helpful assistant."

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type StreamRequest struct {
	Messages []Message `json:"messages"`
}

// ChunkStream is a forward-only cursor over raw JSON completion events.
// Next returns false at the end of the stream or on failure; Err tells which.
type ChunkStream interface {
	Next() bool
	Current() []byte
	Err() error
	Close() error
}

// ICompletionClient opens a streaming chat completion against a deployment.
type ICompletionClient interface {
	StreamChat(ctx context.Context, deployment string, messages []Message) ChunkStream
}

type IChatUsecase interface {
	// Stream yields newline-terminated JSON lines. The sequence can be ranged
	// over once; breaking out of the loop stops the upstream stream.
	Stream(ctx context.Context, request StreamRequest) iter.Seq[[]byte]
}
