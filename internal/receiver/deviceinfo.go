package receiver

import (
	"encoding/xml"
	"strings"

	"github.com/muurk/avrkit/internal/appcommand"
)

// DeviceInfo holds the receiver identification served at
// /goform/Deviceinfo.xml. Only the fields the toolkit uses are modeled;
// the document carries many more.
type DeviceInfo struct {
	XMLName         xml.Name `xml:"Device_Info"`
	DeviceInfoVers  string   `xml:"DeviceInfoVers"`
	CommApiVers     string   `xml:"CommApiVers"`
	Category        string   `xml:"Categ_Name"`
	ManualModelName string   `xml:"ManualModelName"`
	ModelName       string   `xml:"ModelName"`
	MacAddress      string   `xml:"MacAddress"`
	UpgradeVersion  string   `xml:"UpgradeVersion"`
	DeviceZones     int      `xml:"DeviceZones"`
}

// Model returns the best display name for the receiver model. Some
// firmware prefixes ModelName with an asterisk; the manual model name is
// preferred when present.
func (di *DeviceInfo) Model() string {
	if di.ManualModelName != "" {
		return di.ManualModelName
	}
	return strings.TrimPrefix(di.ModelName, "*")
}

// FetchDeviceInfo retrieves and parses the receiver identification
// document. Errors are typed *Error values.
func (c *Client) FetchDeviceInfo() (*DeviceInfo, error) {
	data, err := c.get(appcommand.DeviceInfoEndpoint)
	if err != nil {
		return nil, err
	}

	var info DeviceInfo
	if err := xml.Unmarshal(data, &info); err != nil {
		return nil, NewParseError("failed to parse device info", err)
	}
	return &info, nil
}

// Ping performs a reachability check by fetching the device info
// document. Returns nil if the receiver answered with a parseable
// response.
func (c *Client) Ping() error {
	_, err := c.FetchDeviceInfo()
	return err
}
