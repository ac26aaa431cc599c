package panel

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EventType identifies a panel delta
type EventType string

const (
	EventOpen    EventType = "panel-open"
	EventClose   EventType = "panel-close"
	EventTitle   EventType = "panel-title"
	EventSummary EventType = "panel-summary"
	EventItems   EventType = "panel-items"
	EventReset   EventType = "panel-reset"
	EventStatus  EventType = "panel-status"
	// EventUnknown carries any payload that is not a recognised delta
	EventUnknown EventType = "unknown"
)

var knownEvents = map[EventType]bool{
	EventOpen:    true,
	EventClose:   true,
	EventTitle:   true,
	EventSummary: true,
	EventItems:   true,
	EventReset:   true,
	EventStatus:  true,
}

// Event is one streamed panel delta. Unknown events keep the text they were
// decoded from in Content.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
}

type wireEvent struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// DecodeEvent classifies a raw stream entry. It never fails: anything that is
// not an object with a recognised type decodes as EventUnknown.
func DecodeEvent(raw json.RawMessage) Event {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Event{Type: EventUnknown}
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return Event{Type: EventUnknown, Content: string(trimmed)}
		}
		return Event{Type: EventUnknown, Content: text}

	case '{':
		var wire wireEvent
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return Event{Type: EventUnknown, Content: string(trimmed)}
		}
		content := contentText(wire.Content)
		eventType := EventType(wire.Type)
		if !knownEvents[eventType] {
			return Event{Type: EventUnknown, Content: content}
		}
		return Event{Type: eventType, Content: content}

	default:
		return Event{Type: EventUnknown, Content: string(trimmed)}
	}
}

// contentText returns a string content as-is and any other JSON value as its
// source text, so items sent as a bare array still parse
func contentText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return text
		}
	}
	return string(trimmed)
}

// ReadEvents decodes newline-delimited stream entries. Blank lines are skipped;
// lines that are not valid JSON become unknown events carrying the line.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			events = append(events, Event{Type: EventUnknown, Content: string(line)})
			continue
		}
		events = append(events, DecodeEvent(append(json.RawMessage(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// ReadCompleteEvents decodes only the newline-terminated entries of data and
// returns how many bytes they span. An unterminated last line is left for a
// later read once the writer finishes it.
func ReadCompleteEvents(data []byte) ([]Event, int, error) {
	end := bytes.LastIndexByte(data, '\n') + 1
	if end == 0 {
		return nil, 0, nil
	}
	events, err := ReadEvents(bytes.NewReader(data[:end]))
	if err != nil {
		return nil, 0, err
	}
	return events, end, nil
}
