package appcommand

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		verify  func(t *testing.T, resp *Response)
	}{
		{
			name: "query reply with control attributes",
			body: `<rx><cmd><list>` +
				`<param name="dynamiceq" control="1">1</param>` +
				`<param name="multeq" control="0">3</param>` +
				`</list></cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if !resp.HasParamList() {
					t.Fatal("HasParamList() = false, want true")
				}
				params := resp.Params()
				if len(params) != 2 {
					t.Fatalf("Params() returned %d params, want 2", len(params))
				}
				if params[0].Name != "dynamiceq" || params[0].Value != "1" {
					t.Errorf("param[0] = %q=%q, want dynamiceq=1", params[0].Name, params[0].Value)
				}
				flag, present := params[0].ControlFlag()
				if !present || !flag {
					t.Errorf("param[0].ControlFlag() = %v,%v, want true,true", flag, present)
				}
				flag, present = params[1].ControlFlag()
				if !present || flag {
					t.Errorf("param[1].ControlFlag() = %v,%v, want false,true", flag, present)
				}
				if resp.OK() {
					t.Error("OK() = true for a query reply, want false")
				}
			},
		},
		{
			name: "param without control attribute",
			body: `<rx><cmd><list><param name="dynamicvol">2</param></list></cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				params := resp.Params()
				if len(params) != 1 {
					t.Fatalf("Params() returned %d params, want 1", len(params))
				}
				if _, present := params[0].ControlFlag(); present {
					t.Error("ControlFlag() present = true for missing attribute, want false")
				}
			},
		},
		{
			name: "write acknowledgement",
			body: `<rx><cmd>OK</cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if !resp.OK() {
					t.Error("OK() = false, want true")
				}
				if resp.HasParamList() {
					t.Error("HasParamList() = true, want false")
				}
				if resp.Params() != nil {
					t.Error("Params() != nil for a write acknowledgement")
				}
			},
		},
		{
			name: "write rejection",
			body: `<rx><cmd>NG</cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if resp.OK() {
					t.Error("OK() = true for NG reply, want false")
				}
			},
		},
		{
			name: "acknowledgement text with padding is not OK",
			body: "<rx><cmd> OK </cmd></rx>",
			verify: func(t *testing.T, resp *Response) {
				if resp.OK() {
					t.Error("OK() = true for padded text, want false")
				}
			},
		},
		{
			name: "missing cmd element",
			body: `<rx></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if resp.Cmd != nil {
					t.Error("Cmd != nil for reply without cmd")
				}
				if resp.OK() {
					t.Error("OK() = true, want false")
				}
				if resp.HasParamList() {
					t.Error("HasParamList() = true, want false")
				}
			},
		},
		{
			name: "cmd without list",
			body: `<rx><cmd></cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if resp.HasParamList() {
					t.Error("HasParamList() = true, want false")
				}
			},
		},
		{
			name: "empty list is still present",
			body: `<rx><cmd><list></list></cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if !resp.HasParamList() {
					t.Error("HasParamList() = false for empty list, want true")
				}
				if len(resp.Params()) != 0 {
					t.Errorf("Params() returned %d params, want 0", len(resp.Params()))
				}
			},
		},
		{
			name: "alternate envelope tag",
			body: `<response><cmd>OK</cmd></response>`,
			verify: func(t *testing.T, resp *Response) {
				if !resp.OK() {
					t.Error("OK() = false for alternate envelope, want true")
				}
			},
		},
		{
			name: "byte order mark is tolerated",
			body: "\xef\xbb\xbf" + `<rx><cmd>OK</cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if !resp.OK() {
					t.Error("OK() = false with BOM prefix, want true")
				}
			},
		},
		{
			name: "nul padding is tolerated",
			body: `<rx><cmd>OK</cmd></rx>` + "\x00\x00",
			verify: func(t *testing.T, resp *Response) {
				if !resp.OK() {
					t.Error("OK() = false with NUL padding, want true")
				}
			},
		},
		{
			name: "xml declaration",
			body: `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<rx><cmd>OK</cmd></rx>`,
			verify: func(t *testing.T, resp *Response) {
				if !resp.OK() {
					t.Error("OK() = false with declaration, want true")
				}
			},
		},
		{
			name:    "empty body",
			body:    "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			body:    "  \n\t",
			wantErr: true,
		},
		{
			name:    "truncated document",
			body:    `<rx><cmd><list><param name="mult`,
			wantErr: true,
		},
		{
			name:    "html error page",
			body:    `<html><body>404 Not Found</body></html>`,
			wantErr: false,
			verify: func(t *testing.T, resp *Response) {
				// Well-formed but wrong shape: no cmd element
				if resp.Cmd != nil {
					t.Error("Cmd != nil for error page")
				}
			},
		},
		{
			name:    "not xml at all",
			body:    `{"error": true}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Parse([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.verify != nil {
				tt.verify(t, resp)
			}
		})
	}
}

func TestControlFlagValues(t *testing.T) {
	tests := []struct {
		name        string
		control     *string
		wantFlag    bool
		wantPresent bool
	}{
		{name: "absent", control: nil, wantFlag: false, wantPresent: false},
		{name: "zero", control: strPtr("0"), wantFlag: false, wantPresent: true},
		{name: "one", control: strPtr("1"), wantFlag: true, wantPresent: true},
		{name: "other nonzero", control: strPtr("2"), wantFlag: true, wantPresent: true},
		{name: "not an integer", control: strPtr("yes"), wantFlag: false, wantPresent: false},
		{name: "empty string", control: strPtr(""), wantFlag: false, wantPresent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Param{Name: "dynamiceq", Control: tt.control}
			flag, present := p.ControlFlag()
			if flag != tt.wantFlag || present != tt.wantPresent {
				t.Errorf("ControlFlag() = %v,%v, want %v,%v",
					flag, present, tt.wantFlag, tt.wantPresent)
			}
		})
	}
}

func TestOKNilSafety(t *testing.T) {
	var resp *Response
	if resp.OK() {
		t.Error("OK() on nil response = true, want false")
	}
	if resp.HasParamList() {
		t.Error("HasParamList() on nil response = true, want false")
	}
	if resp.Params() != nil {
		t.Error("Params() on nil response != nil")
	}
}

func BenchmarkParse(b *testing.B) {
	body := []byte(`<rx><cmd><list>` +
		`<param name="dynamiceq" control="1">1</param>` +
		`<param name="reflevoffset" control="1">2</param>` +
		`<param name="dynamicvol" control="1">0</param>` +
		`<param name="multeq" control="1">3</param>` +
		`</list></cmd></rx>`)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(body); err != nil {
			b.Fatal(err)
		}
	}
}

func strPtr(s string) *string {
	return &s
}
