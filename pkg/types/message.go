package types

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of A2A message being sent.
type MessageType string

const (
	MessageHealthCheck     MessageType = "health_check"
	MessageGetCapabilities MessageType = "get_capabilities"
	MessageExecuteTask     MessageType = "execute_task"
	MessageDelegateTask    MessageType = "delegate_task"
	MessageShareContext    MessageType = "share_context"
)

// Valid reports whether t is one of the five protocol message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageHealthCheck, MessageGetCapabilities, MessageExecuteTask,
		MessageDelegateTask, MessageShareContext:
		return true
	}
	return false
}

// CarriesTask reports whether messages of this type execute a task on the
// receiver and therefore carry a correlation id.
func (t MessageType) CarriesTask() bool {
	return t == MessageExecuteTask || t == MessageDelegateTask
}

// Message is the A2A wire envelope. All inter-agent calls POST one of these
// to the peer's /a2a/message endpoint.
type Message struct {
	MessageID     string                 `json:"message_id"`
	MessageType   MessageType            `json:"message_type" binding:"required"`
	SenderID      string                 `json:"sender_id" binding:"required"`
	ReceiverID    string                 `json:"receiver_id,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     string                 `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
}

// NewMessage builds an envelope with a fresh message id and UTC timestamp.
// Task-executing message types also get a fresh correlation id.
func NewMessage(msgType MessageType, senderID string, payload map[string]interface{}) Message {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	msg := Message{
		MessageID:   uuid.NewString(),
		MessageType: msgType,
		SenderID:    senderID,
		Payload:     payload,
		Timestamp:   UTCTimestamp(),
	}
	if msgType.CarriesTask() {
		msg.CorrelationID = uuid.NewString()
	}
	return msg
}

// Response is the reply envelope. Error is set if and only if Success is
// false; Payload is always a non-nil map.
type Response struct {
	Success   bool                   `json:"success"`
	MessageID string                 `json:"message_id"`
	SenderID  string                 `json:"sender_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp string                 `json:"timestamp"`
	Error     string                 `json:"error,omitempty"`
}

// OKResponse builds a successful reply to the given message id.
func OKResponse(messageID, senderID string, payload map[string]interface{}) *Response {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &Response{
		Success:   true,
		MessageID: messageID,
		SenderID:  senderID,
		Payload:   payload,
		Timestamp: UTCTimestamp(),
	}
}

// FailResponse builds a failed reply carrying errMsg.
func FailResponse(messageID, senderID, errMsg string) *Response {
	return &Response{
		Success:   false,
		MessageID: messageID,
		SenderID:  senderID,
		Payload:   map[string]interface{}{},
		Timestamp: UTCTimestamp(),
		Error:     errMsg,
	}
}

// UTCTimestamp returns the current time as an ISO-8601 UTC string.
func UTCTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
