package receiver

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

// mockDeviceInfo mirrors the Deviceinfo.xml document served by an
// AVR-X series receiver, trimmed to the modeled fields.
const mockDeviceInfo = `<?xml version="1.0" encoding="utf-8"?>
<Device_Info>
<DeviceInfoVers>8600</DeviceInfoVers>
<CommApiVers>0300</CommApiVers>
<Categ_Name>AVR</Categ_Name>
<ManualModelName>AVR-X1500H</ManualModelName>
<ModelName>*AVR-X1500H</ModelName>
<MacAddress>0005CD123456</MacAddress>
<UpgradeVersion>0001</UpgradeVersion>
<DeviceZones>2</DeviceZones>
</Device_Info>`

// newTestClient points a client at an httptest server
func newTestClient(serverURL string) *Client {
	u, _ := url.Parse(serverURL)
	port, _ := strconv.Atoi(u.Port())
	return NewClient(u.Hostname(), port)
}

func TestSendPostCommand(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<rx><cmd>OK</cmd></rx>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.SendPostCommand("/goform/AppCommand0300.xml", []byte("<tx></tx>"))
	if err != nil {
		t.Fatalf("SendPostCommand() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/goform/AppCommand0300.xml" {
		t.Errorf("path = %s, want /goform/AppCommand0300.xml", gotPath)
	}
	if !strings.HasPrefix(gotContentType, "text/xml") {
		t.Errorf("content type = %s, want text/xml", gotContentType)
	}
	if string(gotBody) != "<tx></tx>" {
		t.Errorf("request body = %q, want %q", gotBody, "<tx></tx>")
	}
	if string(resp) != `<rx><cmd>OK</cmd></rx>` {
		t.Errorf("response body = %q", resp)
	}
}

func TestSendPostCommand_EmptyResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.SendPostCommand("/goform/AppCommand0300.xml", []byte("<tx></tx>"))
	if err != nil {
		t.Fatalf("SendPostCommand() error = %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("response body length = %d, want 0", len(resp))
	}
}

func TestSendPostCommand_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SendPostCommand("/goform/AppCommand0300.xml", []byte("<tx></tx>"))
	if err == nil {
		t.Fatal("SendPostCommand() error = nil, want HTTP error")
	}

	var rcvErr *Error
	if !errors.As(err, &rcvErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if rcvErr.Type != ErrTypeHTTP {
		t.Errorf("error type = %v, want %v", rcvErr.Type, ErrTypeHTTP)
	}
	if rcvErr.StatusCode != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", rcvErr.StatusCode)
	}
	if rcvErr.Endpoint != "/goform/AppCommand0300.xml" {
		t.Errorf("endpoint = %q, want the command endpoint", rcvErr.Endpoint)
	}
}

func TestSendPostCommand_NetworkFailure(t *testing.T) {
	// Client pointing at unreachable address
	client := NewClient("192.0.2.1", 80) // TEST-NET-1 (guaranteed unreachable)
	client.HTTPClient.Timeout = 100 * time.Millisecond

	_, err := client.SendPostCommand("/goform/AppCommand0300.xml", []byte("<tx></tx>"))
	if err == nil {
		t.Fatal("SendPostCommand() error = nil, want network error")
	}
	if !IsNetworkError(err) {
		t.Errorf("IsNetworkError() = false for %v, want true", err)
	}
}

func TestFetchDeviceInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/goform/Deviceinfo.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(mockDeviceInfo))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	info, err := client.FetchDeviceInfo()
	if err != nil {
		t.Fatalf("FetchDeviceInfo() error = %v", err)
	}

	if info.Model() != "AVR-X1500H" {
		t.Errorf("Model() = %q, want AVR-X1500H", info.Model())
	}
	if info.CommApiVers != "0300" {
		t.Errorf("CommApiVers = %q, want 0300", info.CommApiVers)
	}
	if info.MacAddress != "0005CD123456" {
		t.Errorf("MacAddress = %q, want 0005CD123456", info.MacAddress)
	}
	if info.DeviceZones != 2 {
		t.Errorf("DeviceZones = %d, want 2", info.DeviceZones)
	}
}

func TestDeviceInfoModelFallback(t *testing.T) {
	// Without a manual model name the asterisk prefix is stripped
	info := &DeviceInfo{ModelName: "*AVR-X4300H"}
	if got := info.Model(); got != "AVR-X4300H" {
		t.Errorf("Model() = %q, want AVR-X4300H", got)
	}

	info = &DeviceInfo{ManualModelName: "SR6012", ModelName: "*NR-ignored"}
	if got := info.Model(); got != "SR6012" {
		t.Errorf("Model() = %q, want SR6012", got)
	}
}

func TestFetchDeviceInfo_MalformedXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<Device_Info><ModelName>broken"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchDeviceInfo()
	if err == nil {
		t.Fatal("FetchDeviceInfo() error = nil, want parse error")
	}
	if !IsParseError(err) {
		t.Errorf("IsParseError() = false for %v, want true", err)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mockDeviceInfo))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Ping(); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}

func TestClientDefaults(t *testing.T) {
	client := NewClient("192.168.1.40", 0)
	if client.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", client.Port(), DefaultPort)
	}
	if client.BaseURL() != "http://192.168.1.40:80" {
		t.Errorf("BaseURL() = %q, want http://192.168.1.40:80", client.BaseURL())
	}
	if client.Host() != "192.168.1.40" {
		t.Errorf("Host() = %q, want 192.168.1.40", client.Host())
	}
}
