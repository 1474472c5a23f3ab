package appcommand

import (
	"encoding/xml"
	"fmt"
)

// Receiver endpoints for the AppCommand dialect. The 0300 endpoint carries
// the structured cmd/name/list form used by newer firmware.
const (
	// SettingsEndpoint accepts structured commands (cmd id 3)
	SettingsEndpoint = "/goform/AppCommand0300.xml"

	// DeviceInfoEndpoint serves static device identification XML
	DeviceInfoEndpoint = "/goform/Deviceinfo.xml"
)

// Command names understood by the settings endpoint
const (
	CommandGetAudyssey = "GetAudyssey"
	CommandSetAudyssey = "SetAudyssey"
)

// CommandIDSettings is the cmd id attribute for the 0300 endpoint
const CommandIDSettings = "3"

// Request is a single command document to be posted to the receiver
type Request struct {
	// CommandID is the cmd id attribute (always "3" on the 0300 endpoint)
	CommandID string

	// Name is the command name, e.g. "GetAudyssey"
	Name string

	// Params are the command parameters. Query commands list parameter
	// names with empty values; write commands carry one name/value pair.
	Params []RequestParam
}

// RequestParam is one <param> element of a request
type RequestParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// txEnvelope is the wire form of a request document
type txEnvelope struct {
	XMLName xml.Name `xml:"tx"`
	Cmd     txCmd    `xml:"cmd"`
}

type txCmd struct {
	ID     string         `xml:"id,attr"`
	Name   string         `xml:"name"`
	Params []RequestParam `xml:"list>param"`
}

// NewGetAudyssey builds a GetAudyssey query listing the given parameter names
func NewGetAudyssey(names ...string) *Request {
	params := make([]RequestParam, 0, len(names))
	for _, name := range names {
		params = append(params, RequestParam{Name: name})
	}
	return &Request{
		CommandID: CommandIDSettings,
		Name:      CommandGetAudyssey,
		Params:    params,
	}
}

// NewSetAudyssey builds a SetAudyssey write for a single parameter
func NewSetAudyssey(name string, value string) *Request {
	return &Request{
		CommandID: CommandIDSettings,
		Name:      CommandSetAudyssey,
		Params:    []RequestParam{{Name: name, Value: value}},
	}
}

// Marshal serializes the request as a UTF-8 XML document with declaration,
// ready to POST to the receiver.
func (r *Request) Marshal() ([]byte, error) {
	doc := txEnvelope{
		Cmd: txCmd{
			ID:     r.CommandID,
			Name:   r.Name,
			Params: r.Params,
		},
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", r.Name, err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body))
	out = append(out, []byte(xml.Header)...)
	out = append(out, body...)
	return out, nil
}

// ParseRequest decodes a posted command document, applying the same BOM
// and padding tolerance as Parse. Used by the simulator and by replay
// tooling; real receivers do their own decoding.
func ParseRequest(data []byte) (*Request, error) {
	data = clean(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	var doc txEnvelope
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	return &Request{
		CommandID: doc.Cmd.ID,
		Name:      doc.Cmd.Name,
		Params:    doc.Cmd.Params,
	}, nil
}
