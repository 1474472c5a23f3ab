// Package appcommand implements the AppCommand XML dialect spoken by
// Denon and Marantz network receivers.
//
// This package handles construction and parsing of the XML command
// documents exchanged with the receiver over HTTP POST. The dialect was
// reconstructed from captured traffic between the official mobile apps
// and AVR-X series receivers.
//
// # Protocol Overview
//
// Commands are posted to fixed endpoints under /goform/. The request body
// is a UTF-8 XML document with declaration:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<tx>
//	  <cmd id="3">
//	    <name>GetAudyssey</name>
//	    <list>
//	      <param name="dynamiceq"></param>
//	      <param name="multeq"></param>
//	    </list>
//	  </cmd>
//	</tx>
//
// The receiver answers with a matching document. Query responses carry a
// parameter list, each value a small integer code, optionally tagged with
// a control attribute indicating per-zone support:
//
//	<rx>
//	  <cmd>
//	    <list>
//	      <param name="dynamiceq" control="1">1</param>
//	      <param name="multeq" control="1">0</param>
//	    </list>
//	  </cmd>
//	</rx>
//
// Write responses carry the outcome as the cmd element text:
//
//	<rx><cmd>OK</cmd></rx>
//
// The root tag of responses varies between firmware revisions, so parsing
// only requires the cmd element, not a particular envelope name.
//
// # Usage Example
//
//	req := appcommand.NewGetAudyssey("dynamiceq", "multeq")
//	body, err := req.Marshal()
//	if err != nil {
//	    return err
//	}
//	// POST body to appcommand.SettingsEndpoint, then:
//	resp, err := appcommand.Parse(replyBytes)
//	if err != nil {
//	    return err
//	}
//	for _, p := range resp.Params() {
//	    fmt.Println(p.Name, p.Value)
//	}
package appcommand
