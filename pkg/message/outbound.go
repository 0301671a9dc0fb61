package message

// ChatReply is the response to a ChatRequest.
type ChatReply struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title,omitempty"`
	Reply          string `json:"reply"`
	Phase          string `json:"phase,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Confidence     string `json:"confidence,omitempty"`

	// Parameters echoes the generation parameters used for this turn.
	Parameters map[string]float64 `json:"parameters,omitempty"`

	// Blocked is true when guardrails refused the input. Reply then holds
	// a canned explanation and nothing was sent to the model.
	Blocked bool `json:"blocked,omitempty"`
}

// FrameType discriminates streamed reply frames.
type FrameType string

// Stream frame types.
const (
	FrameDelta FrameType = "delta"
	FrameDone  FrameType = "done"
	FrameError FrameType = "error"
)

// StreamFrame is one frame of a streamed reply.
type StreamFrame struct {
	Type    FrameType  `json:"type"`
	Content string     `json:"content,omitempty"`
	Reply   *ChatReply `json:"reply,omitempty"`
	Error   string     `json:"error,omitempty"`
}
