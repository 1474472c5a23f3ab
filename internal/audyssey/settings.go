package audyssey

import (
	"strconv"
	"strings"

	"github.com/muurk/avrkit/internal/appcommand"
	"github.com/muurk/avrkit/internal/logging"
	"github.com/muurk/avrkit/internal/receiver"
)

// Transport moves command bodies to and from the receiver. It is
// satisfied by *receiver.Client; tests substitute fakes.
type Transport interface {
	// SendPostCommand posts a body to an endpoint path and returns the
	// raw response body
	SendPostCommand(endpoint string, body []byte) ([]byte, error)

	// Host identifies the receiver for log context
	Host() string
}

// Settings mirrors the Audyssey calibration state of one receiver.
//
// All value fields are nil until the first successful Update. Labels are
// the human-readable strings from the code tables in this package, except
// RefLevelOffset which holds NotApplicable while Dynamic EQ is off. The
// *Control fields mirror the per-zone control flags the receiver reports
// alongside each parameter; they stay nil when the firmware omits the
// attribute.
//
// Methods never return errors: failures surface as false returns and
// unchanged state, with transport problems logged once. Connect timeouts
// are swallowed entirely since a receiver in standby is expected to miss
// polls. The struct is not safe for concurrent use; the owner serializes
// access.
type Settings struct {
	transport Transport

	DynamicEQ             *bool
	DynamicEQControl      *bool
	RefLevelOffset        *string
	RefLevelOffsetControl *bool
	DynamicVolume         *string
	DynamicVolumeControl  *bool
	MultiEQ               *string
	MultiEQControl        *bool
}

// NewSettings creates an adapter bound to a transport. State is empty
// until Update succeeds.
func NewSettings(transport Transport) *Settings {
	return &Settings{transport: transport}
}

// sendCommand marshals and posts a command, returning the parsed reply
// or nil on any failure. Connect timeouts stay silent; other transport
// failures and malformed replies produce one error log each.
func (s *Settings) sendCommand(req *appcommand.Request) *appcommand.Response {
	body, err := req.Marshal()
	if err != nil {
		logging.LogRequestBuildError(s.transport.Host(), appcommand.SettingsEndpoint, err)
		return nil
	}

	logging.LogCommand(s.transport.Host(), appcommand.SettingsEndpoint, req.Name)
	logging.LogPayload("Command body", body)

	result, err := s.transport.SendPostCommand(appcommand.SettingsEndpoint, body)
	if err != nil {
		if receiver.IsConnectTimeout(err) {
			return nil
		}
		logging.LogTransportError(s.transport.Host(), appcommand.SettingsEndpoint, err)
		return nil
	}
	if len(result) == 0 {
		return nil
	}

	logging.LogPayload("Response body", result)

	resp, err := appcommand.Parse(result)
	if err != nil {
		logging.LogMalformedResponse(s.transport.Host(), appcommand.SettingsEndpoint)
		return nil
	}
	return resp
}

// Update fetches the current Audyssey settings from the receiver and
// overwrites the in-memory state. It returns false when the receiver
// could not be queried or the reply lacks the parameter list; state is
// left untouched in that case. Parameters with unknown names are
// ignored; recognized parameters with unmappable values reset their
// field to nil.
func (s *Settings) Update() bool {
	req := appcommand.NewGetAudyssey(
		ParamDynamicEQ, ParamRefLevelOffset, ParamDynamicVolume, ParamMultiEQ,
	)

	resp := s.sendCommand(req)
	if resp == nil {
		return false
	}
	if !resp.HasParamList() {
		return false
	}

	for _, param := range resp.Params() {
		switch param.Name {
		case ParamMultiEQ:
			s.MultiEQ = labelFor(multiEQByCode, param.Value)
		case ParamDynamicEQ:
			s.DynamicEQ = parseBoolCode(param.Value)
		case ParamRefLevelOffset:
			// The offset only applies while Dynamic EQ is on. The check
			// uses the state as of this point in the loop, so a
			// dynamiceq parameter earlier in the reply counts.
			if s.DynamicEQ != nil && !*s.DynamicEQ {
				na := NotApplicable
				s.RefLevelOffset = &na
			} else {
				s.RefLevelOffset = labelFor(refLevelOffsetByCode, param.Value)
			}
		case ParamDynamicVolume:
			s.DynamicVolume = labelFor(dynamicVolumeByCode, param.Value)
		default:
			continue
		}

		if flag, present := param.ControlFlag(); present {
			s.setControl(param.Name, flag)
		}
	}
	return true
}

// setAudyssey writes one parameter and reports whether the receiver
// acknowledged it
func (s *Settings) setAudyssey(name string, code string) bool {
	resp := s.sendCommand(appcommand.NewSetAudyssey(name, code))
	accepted := resp.OK()
	logging.LogSettingChange(s.transport.Host(), name, code, accepted)
	return accepted
}

// DynamicEQOff turns Dynamic EQ off. On acknowledgement the local state
// records false.
func (s *Settings) DynamicEQOff() bool {
	if s.setAudyssey(ParamDynamicEQ, "0") {
		v := false
		s.DynamicEQ = &v
		return true
	}
	return false
}

// DynamicEQOn turns Dynamic EQ on. On acknowledgement the local state
// records true.
func (s *Settings) DynamicEQOn() bool {
	if s.setAudyssey(ParamDynamicEQ, "1") {
		v := true
		s.DynamicEQ = &v
		return true
	}
	return false
}

// SetMultiEQ selects a MultEQ curve by label. On acknowledgement the
// local state records the label without a re-read. A label outside the
// table sends an empty code which the receiver rejects, leaving state
// unchanged.
func (s *Settings) SetMultiEQ(label string) bool {
	if s.setAudyssey(ParamMultiEQ, multiEQByLabel[label]) {
		v := label
		s.MultiEQ = &v
		return true
	}
	return false
}

// SetRefLevelOffset selects a reference level offset by label. The
// write is only attempted while Dynamic EQ is known to be on; otherwise
// this is a no-op that performs no network traffic.
func (s *Settings) SetRefLevelOffset(label string) bool {
	if s.DynamicEQ == nil || !*s.DynamicEQ {
		return false
	}
	if s.setAudyssey(ParamRefLevelOffset, refLevelOffsetByLabel[label]) {
		v := label
		s.RefLevelOffset = &v
		return true
	}
	return false
}

// SetDynamicVolume selects a dynamic volume mode by label. On
// acknowledgement the local state records the label without a re-read.
func (s *Settings) SetDynamicVolume(label string) bool {
	if s.setAudyssey(ParamDynamicVolume, dynamicVolumeByLabel[label]) {
		v := label
		s.DynamicVolume = &v
		return true
	}
	return false
}

// setControl records a per-zone control flag for a recognized parameter
func (s *Settings) setControl(name string, flag bool) {
	v := flag
	switch name {
	case ParamDynamicEQ:
		s.DynamicEQControl = &v
	case ParamRefLevelOffset:
		s.RefLevelOffsetControl = &v
	case ParamDynamicVolume:
		s.DynamicVolumeControl = &v
	case ParamMultiEQ:
		s.MultiEQControl = &v
	}
}

// parseBoolCode reads an integer boolean ("0" off, anything else on).
// Empty or non-integer text yields nil.
func parseBoolCode(text string) *bool {
	if text == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	v := n != 0
	return &v
}
