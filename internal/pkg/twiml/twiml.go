// Package twiml renders voice-markup responses for the telephony provider.
// The decision layer hands over plain values; only this package knows the
// wire format.
package twiml

import (
	"encoding/xml"
)

// Response is the root voice-markup document.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// Say speaks text to the current party.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Gather collects digit input and posts it to Action.
type Gather struct {
	XMLName   xml.Name `xml:"Gather"`
	Action    string   `xml:"action,attr"`
	Method    string   `xml:"method,attr,omitempty"`
	NumDigits int      `xml:"numDigits,attr,omitempty"`
	Timeout   int      `xml:"timeout,attr,omitempty"`
	Verbs     []any
}

// Dial bridges the call to Number. The whisper URL plays to the callee
// before the bridge; the action URL is hit if the callee never answers.
type Dial struct {
	XMLName                      xml.Name `xml:"Dial"`
	Action                       string   `xml:"action,attr,omitempty"`
	Timeout                      int      `xml:"timeout,attr,omitempty"`
	Record                       string   `xml:"record,attr,omitempty"`
	RecordingStatusCallback      string   `xml:"recordingStatusCallback,attr,omitempty"`
	RecordingStatusCallbackEvent string   `xml:"recordingStatusCallbackEvent,attr,omitempty"`
	Number                       Number   `xml:"Number"`
}

// Number is a dial target with an optional whisper URL.
type Number struct {
	URL  string `xml:"url,attr,omitempty"`
	Text string `xml:",chardata"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Message sends an SMS reply from within a messaging webhook response.
type Message struct {
	XMLName xml.Name `xml:"Message"`
	Text    string   `xml:",chardata"`
}

// Render serializes the response with the XML declaration the provider
// expects. Marshal errors cannot occur for these fixed structures, so a
// failure degrades to an empty well-formed response.
func Render(verbs ...any) string {
	doc := Response{Verbs: verbs}
	out, err := xml.Marshal(doc)
	if err != nil {
		return xml.Header + "<Response></Response>"
	}
	return xml.Header + string(out)
}

// VoiceSay renders a single spoken line.
func VoiceSay(text string) string {
	return Render(Say{Text: text})
}

// VoiceSayHangup renders a spoken line followed by a hangup.
func VoiceSayHangup(text string) string {
	return Render(Say{Text: text}, Hangup{})
}

// Empty renders the bare acknowledgment document.
func Empty() string {
	return Render()
}

// ContentType is the response content type for voice and messaging markup.
const ContentType = "text/xml"
