package live

import (
	"github.com/alnah/go-mdslides"
)

// Message types understood by the page scripts.
const (
	TypeUpdate  = "update"  // slides: new diagram list
	TypeReplace = "replace" // preview: new body, outline and diagrams
	TypeReload  = "reload"  // fetch the page again
	TypeNotice  = "notice"  // show a transient error notice
)

// Message is an incremental update pushed to an open surface.
// Diagrams is always present (possibly empty) in update and replace messages.
type Message struct {
	Type     string   `json:"type"`
	Diagrams []string `json:"diagrams,omitzero"`
	Body     string   `json:"body,omitempty"`
	Outline  string   `json:"outline,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// UpdateMessage returns the incremental message for a render result:
// the diagram list in slides mode, the whole body in preview mode.
func UpdateMessage(result *mdslides.Result) Message {
	diagrams := result.Diagrams
	if diagrams == nil {
		diagrams = []string{}
	}

	if result.Mode == mdslides.ModePreview {
		return Message{
			Type:     TypeReplace,
			Diagrams: diagrams,
			Body:     result.Body,
			Outline:  result.Outline,
		}
	}
	return Message{Type: TypeUpdate, Diagrams: diagrams}
}

// ReloadMessage asks every open page to reload.
func ReloadMessage() Message {
	return Message{Type: TypeReload}
}

// NoticeMessage carries a user-visible error text.
func NoticeMessage(text string) Message {
	return Message{Type: TypeNotice, Message: text}
}
