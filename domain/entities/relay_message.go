package entities

// Attachment is one session artifact sent along with the prompt.
// Text artifacts use Data, images use DataURL.
type Attachment struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Data    string `json:"data,omitempty"`
	DataURL string `json:"dataURL,omitempty"`
}

// RelayMessage is the request sent to the agent through the relay
type RelayMessage struct {
	Prompt      string       `json:"prompt"`
	Attachments []Attachment `json:"attachments"`
}
