package dto

type AssistantMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"omitempty,max=64"`
	Text           string `json:"text" validate:"max=1000"`
}

type AssistantMessageResponse struct {
	ConversationID string         `json:"conversation_id"`
	Intent         string         `json:"intent"`
	Text           string         `json:"text"`
	Speech         string         `json:"speech"`
	Options        []string       `json:"options,omitempty"`
	State          string         `json:"state"`
	Event          *EventResponse `json:"event,omitempty"`
}

type AssistantStateResponse struct {
	ConversationID string   `json:"conversation_id"`
	State          string   `json:"state"`
	Generation     uint64   `json:"generation"`
	Term           string   `json:"term,omitempty"`
	Options        []string `json:"options,omitempty"`
}
