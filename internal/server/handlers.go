package server

import (
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/muurk/avrkit/internal/appcommand"
	"github.com/muurk/avrkit/internal/logging"
	"go.uber.org/zap"
)

// maxRequestBody caps command documents; real requests are under 1 KB
const maxRequestBody = 64 << 10

// cmdRejected answers a failed write. Clients only test the cmd text
// against "OK", so the exact rejection text is informational.
const cmdRejected = "ER"

// Identity constants served in the device info document. The MAC uses
// the D&M Holdings OUI.
const (
	simulatorMAC      = "0005CD000001"
	simulatorFirmware = "4500-1061-2069-0814"
)

// rxEnvelope is the wire form of a reply document
type rxEnvelope struct {
	XMLName xml.Name `xml:"rx"`
	Cmd     rxCmd    `xml:"cmd"`
}

// rxCmd is the cmd element of a reply. Write acknowledgements carry only
// Text; query replies carry the id attribute, command name, and list.
type rxCmd struct {
	ID   string  `xml:"id,attr,omitempty"`
	Text string  `xml:",chardata"`
	Name string  `xml:"name,omitempty"`
	List *rxList `xml:"list,omitempty"`
}

type rxList struct {
	Params []rxParam `xml:"param"`
}

type rxParam struct {
	Name    string `xml:"name,attr"`
	Control string `xml:"control,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// deviceInfoDoc mirrors the identification document HEOS-era firmware
// serves. Only a subset of the real document's fields; clients ignore
// what they do not model.
type deviceInfoDoc struct {
	XMLName         xml.Name `xml:"Device_Info"`
	DeviceInfoVers  string   `xml:"DeviceInfoVers"`
	CommApiVers     string   `xml:"CommApiVers"`
	Category        string   `xml:"Categ_Name"`
	ManualModelName string   `xml:"ManualModelName"`
	ModelName       string   `xml:"ModelName"`
	MacAddress      string   `xml:"MacAddress"`
	UpgradeVersion  string   `xml:"UpgradeVersion"`
	DeviceZones     int      `xml:"DeviceZones"`
	FriendlyName    string   `xml:"FriendlyName"`
}

// routes wires the handlers onto a fresh mux
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(appcommand.SettingsEndpoint, s.handleAppCommand)
	mux.HandleFunc(appcommand.DeviceInfoEndpoint, s.handleDeviceInfo)
	mux.HandleFunc(EventsEndpoint, s.handleEvents)
	return mux
}

// handleAppCommand decodes a posted command document and dispatches on
// the command name
func (s *Server) handleAppCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	logging.LogPayload("command received", body)

	req, err := appcommand.ParseRequest(body)
	if err != nil {
		logging.Warn("Rejecting malformed command document",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		http.Error(w, "malformed command document", http.StatusBadRequest)
		return
	}

	switch req.Name {
	case appcommand.CommandGetAudyssey:
		s.handleGetAudyssey(w, r, req)
	case appcommand.CommandSetAudyssey:
		s.handleSetAudyssey(w, r, req)
	default:
		logging.Warn("Unknown command name",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("name", req.Name),
		)
		s.publish(r, "appcommand", req.Name, nil, "unknown command")
		s.writeReply(w, errorReply())
	}
}

// handleGetAudyssey answers a query with the current codes for the
// requested parameters. Unknown names are omitted from the reply; an
// empty request list returns everything.
func (s *Server) handleGetAudyssey(w http.ResponseWriter, r *http.Request, req *appcommand.Request) {
	names := make([]string, 0, len(req.Params))
	for _, p := range req.Params {
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		names = replyOrder
	}

	params := make([]rxParam, 0, len(names))
	values := make(map[string]string, len(names))
	for _, name := range names {
		code, ok := s.state.Get(name)
		if !ok {
			continue
		}
		params = append(params, rxParam{Name: name, Control: "1", Value: code})
		values[name] = code
	}

	s.publish(r, "appcommand", req.Name, values, "ok")
	s.writeReply(w, listReply(params))
}

// handleSetAudyssey validates and applies a single-parameter write
func (s *Server) handleSetAudyssey(w http.ResponseWriter, r *http.Request, req *appcommand.Request) {
	if len(req.Params) != 1 {
		s.publish(r, "appcommand", req.Name, nil, "expected exactly one parameter")
		s.writeReply(w, errorReply())
		return
	}

	p := req.Params[0]
	if err := s.state.Set(p.Name, p.Value); err != nil {
		logging.LogSettingChange(r.RemoteAddr, p.Name, p.Value, false)
		s.publish(r, "appcommand", req.Name, map[string]string{p.Name: p.Value}, err.Error())
		s.writeReply(w, errorReply())
		return
	}

	logging.LogSettingChange(r.RemoteAddr, p.Name, p.Value, true)
	s.publish(r, "appcommand", req.Name, map[string]string{p.Name: p.Value}, "ok")
	s.writeReply(w, okReply())
}

// handleDeviceInfo serves the static identification document
func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)

	doc := deviceInfoDoc{
		DeviceInfoVers:  "3",
		CommApiVers:     "0300",
		Category:        "AVR",
		ManualModelName: s.config.ModelName,
		ModelName:       "*" + s.config.ModelName,
		MacAddress:      simulatorMAC,
		UpgradeVersion:  simulatorFirmware,
		DeviceZones:     3,
		FriendlyName:    s.config.FriendlyName,
	}

	s.publish(r, "deviceinfo", "Deviceinfo", nil, "ok")
	s.writeDocument(w, doc)
}

func okReply() rxEnvelope {
	return rxEnvelope{Cmd: rxCmd{Text: "OK"}}
}

func errorReply() rxEnvelope {
	return rxEnvelope{Cmd: rxCmd{Text: cmdRejected}}
}

func listReply(params []rxParam) rxEnvelope {
	return rxEnvelope{Cmd: rxCmd{
		ID:   appcommand.CommandIDSettings,
		Name: appcommand.CommandGetAudyssey,
		List: &rxList{Params: params},
	}}
}

func (s *Server) writeReply(w http.ResponseWriter, doc rxEnvelope) {
	s.writeDocument(w, doc)
}

// writeDocument marshals and sends an XML document with the declaration
// real firmware emits
func (s *Server) writeDocument(w http.ResponseWriter, doc interface{}) {
	body, err := xml.Marshal(doc)
	if err != nil {
		logging.Error("Failed to marshal reply", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	out := append([]byte(xml.Header), body...)
	if _, err := w.Write(out); err != nil {
		logging.Debug("Failed to write reply", zap.Error(err))
	}
}

// publish queues an event for the monitor feed
func (s *Server) publish(r *http.Request, kind, name string, params map[string]string, result string) {
	if s.hub == nil {
		return
	}
	s.hub.publish(Event{
		Time:       time.Now(),
		RemoteAddr: r.RemoteAddr,
		Kind:       kind,
		Name:       name,
		Params:     params,
		Result:     result,
	})
}
