package appcommand

import (
	"strings"
	"testing"
)

func TestRequestMarshal(t *testing.T) {
	tests := []struct {
		name    string
		request *Request
		want    string
	}{
		{
			name:    "get with four parameters",
			request: NewGetAudyssey("dynamiceq", "reflevoffset", "dynamicvol", "multeq"),
			want: `<tx><cmd id="3"><name>GetAudyssey</name><list>` +
				`<param name="dynamiceq"></param>` +
				`<param name="reflevoffset"></param>` +
				`<param name="dynamicvol"></param>` +
				`<param name="multeq"></param>` +
				`</list></cmd></tx>`,
		},
		{
			name:    "set single parameter",
			request: NewSetAudyssey("multeq", "1"),
			want: `<tx><cmd id="3"><name>SetAudyssey</name><list>` +
				`<param name="multeq">1</param>` +
				`</list></cmd></tx>`,
		},
		{
			name:    "set with empty value",
			request: NewSetAudyssey("dynamicvol", ""),
			want: `<tx><cmd id="3"><name>SetAudyssey</name><list>` +
				`<param name="dynamicvol"></param>` +
				`</list></cmd></tx>`,
		},
		{
			name: "value with markup characters is escaped",
			request: &Request{
				CommandID: CommandIDSettings,
				Name:      CommandSetAudyssey,
				Params:    []RequestParam{{Name: "multeq", Value: "<1>"}},
			},
			want: `<tx><cmd id="3"><name>SetAudyssey</name><list>` +
				`<param name="multeq">&lt;1&gt;</param>` +
				`</list></cmd></tx>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := tt.request.Marshal()
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			got := string(body)
			if !strings.HasPrefix(got, `<?xml version="1.0" encoding="UTF-8"?>`) {
				t.Errorf("Marshal() missing XML declaration, got prefix %q", got[:40])
			}

			// Strip declaration line before comparing the document body
			if idx := strings.Index(got, "?>"); idx >= 0 {
				got = strings.TrimLeft(got[idx+2:], "\n")
			}
			if got != tt.want {
				t.Errorf("Marshal() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRequestMarshalRoundTrip(t *testing.T) {
	// A marshaled request must parse with the response decoder used by the
	// simulator, which accepts any envelope tag.
	body, err := NewSetAudyssey("dynamiceq", "1").Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	resp, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	params := resp.Params()
	if len(params) != 1 {
		t.Fatalf("Params() returned %d params, want 1", len(params))
	}
	if params[0].Name != "dynamiceq" || params[0].Value != "1" {
		t.Errorf("param = %q=%q, want dynamiceq=1", params[0].Name, params[0].Value)
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantCmd    string
		wantParams []RequestParam
	}{
		{
			name: "get with parameter list",
			body: `<?xml version="1.0" encoding="utf-8"?><tx><cmd id="3">` +
				`<name>GetAudyssey</name><list>` +
				`<param name="dynamiceq" /><param name="multeq" />` +
				`</list></cmd></tx>`,
			wantCmd: CommandGetAudyssey,
			wantParams: []RequestParam{
				{Name: "dynamiceq"},
				{Name: "multeq"},
			},
		},
		{
			name: "set with value",
			body: `<tx><cmd id="3"><name>SetAudyssey</name><list>` +
				`<param name="reflevoffset">2</param></list></cmd></tx>`,
			wantCmd:    CommandSetAudyssey,
			wantParams: []RequestParam{{Name: "reflevoffset", Value: "2"}},
		},
		{
			name:    "leading BOM tolerated",
			body:    "\xef\xbb\xbf" + `<tx><cmd id="3"><name>GetAudyssey</name></cmd></tx>`,
			wantCmd: CommandGetAudyssey,
		},
		{
			name:    "empty body",
			body:    "",
			wantErr: true,
		},
		{
			name:    "not XML",
			body:    "GET /goform/AppCommand0300.xml",
			wantErr: true,
		},
		{
			name:    "truncated document",
			body:    `<tx><cmd id="3"><name>SetAudyssey`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseRequest() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest() error = %v", err)
			}
			if req.Name != tt.wantCmd {
				t.Errorf("Name = %q, want %q", req.Name, tt.wantCmd)
			}
			if req.CommandID != CommandIDSettings {
				t.Errorf("CommandID = %q, want %q", req.CommandID, CommandIDSettings)
			}
			if len(req.Params) != len(tt.wantParams) {
				t.Fatalf("got %d params, want %d", len(req.Params), len(tt.wantParams))
			}
			for i, want := range tt.wantParams {
				if req.Params[i] != want {
					t.Errorf("param[%d] = %+v, want %+v", i, req.Params[i], want)
				}
			}
		})
	}
}

func TestParseRequestRoundTrip(t *testing.T) {
	orig := NewGetAudyssey("dynamiceq", "reflevoffset", "dynamicvol", "multeq")
	body, err := orig.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("ParseRequest() error = %v", err)
	}
	if req.Name != orig.Name || req.CommandID != orig.CommandID {
		t.Errorf("round trip changed command: got %s/%s, want %s/%s",
			req.CommandID, req.Name, orig.CommandID, orig.Name)
	}
	if len(req.Params) != len(orig.Params) {
		t.Fatalf("round trip changed param count: got %d, want %d",
			len(req.Params), len(orig.Params))
	}
}

func BenchmarkRequestMarshal(b *testing.B) {
	req := NewGetAudyssey("dynamiceq", "reflevoffset", "dynamicvol", "multeq")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := req.Marshal(); err != nil {
			b.Fatal(err)
		}
	}
}
