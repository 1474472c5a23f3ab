package appcommand

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Response is a parsed receiver reply. The envelope tag is not recorded;
// firmware revisions disagree on the root name and nothing downstream
// needs it.
type Response struct {
	Cmd *ResponseCmd `xml:"cmd"`
}

// ResponseCmd is the cmd element of a reply. For query replies List holds
// the returned parameters. For write replies Text carries the outcome
// ("OK" on success).
type ResponseCmd struct {
	Text string     `xml:",chardata"`
	List *ParamList `xml:"list"`
}

// ParamList is the list element of a query reply. It is modeled as its
// own type so an absent list can be told apart from an empty one.
type ParamList struct {
	Params []Param `xml:"param"`
}

// Param is one returned parameter. Control is nil when the receiver did
// not include the attribute; it carries "0" or "1" when present,
// indicating whether the parameter can be controlled per zone.
type Param struct {
	Name    string  `xml:"name,attr"`
	Control *string `xml:"control,attr"`
	Value   string  `xml:",chardata"`
}

// utf8BOM is emitted by some firmware revisions in front of the XML
// declaration; Go's decoder rejects it.
var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Parse decodes a receiver reply. It tolerates the byte order mark and
// NUL padding some firmware emits. An error is returned for empty or
// malformed documents.
func Parse(data []byte) (*Response, error) {
	data = clean(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var resp Response
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &resp, nil
}

// clean strips the UTF-8 BOM and surrounding NUL/whitespace padding
func clean(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	return bytes.Trim(data, "\x00 \t\r\n")
}

// OK reports whether the reply is a write acknowledgement, that is the
// cmd element exists and its text is exactly "OK". No whitespace
// normalization is applied; the firmware emits the acknowledgement
// without padding.
func (r *Response) OK() bool {
	if r == nil || r.Cmd == nil {
		return false
	}
	return r.Cmd.Text == "OK"
}

// HasParamList reports whether the reply carries a cmd/list element.
// An empty list still counts as present.
func (r *Response) HasParamList() bool {
	return r != nil && r.Cmd != nil && r.Cmd.List != nil
}

// Params returns the returned parameters, or nil when the reply has no
// cmd/list element.
func (r *Response) Params() []Param {
	if !r.HasParamList() {
		return nil
	}
	return r.Cmd.List.Params
}

// ControlFlag decodes the control attribute as an integer boolean, any
// nonzero value meaning true. The second return is false when the
// attribute was absent or not an integer.
func (p Param) ControlFlag() (bool, bool) {
	if p.Control == nil {
		return false, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(*p.Control))
	if err != nil {
		return false, false
	}
	return n != 0, true
}
