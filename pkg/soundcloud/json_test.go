package soundcloud

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestJSON_Accessors(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{
		"id": 9007199254740993,
		"quoted_id": "12",
		"title": "song",
		"bpm": 98.5,
		"streamable": true,
		"created_at": "2015/03/12 10:20:30 +0000",
		"stream_url": "https://api.soundcloud.com/tracks/1/stream",
		"relative": "/tracks/1",
		"list": [1, 2, 3],
		"nothing": null
	}`))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if n, ok := doc.Key("id").Int64Value(); !ok || n != 9007199254740993 {
		t.Errorf("expected exact large id, got %d (%v)", n, ok)
	}
	if n, ok := doc.Key("quoted_id").IntValue(); !ok || n != 12 {
		t.Errorf("expected quoted id 12, got %d (%v)", n, ok)
	}
	if _, ok := doc.Key("bpm").IntValue(); ok {
		t.Error("expected fractional number not to be an int")
	}
	if f, ok := doc.Key("bpm").FloatValue(); !ok || f != 98.5 {
		t.Errorf("expected bpm 98.5, got %v", f)
	}
	if s, ok := doc.Key("title").StringValue(); !ok || s != "song" {
		t.Errorf("expected title song, got %q", s)
	}
	if b, ok := doc.Key("streamable").BoolValue(); !ok || !b {
		t.Error("expected streamable true")
	}

	want := time.Date(2015, 3, 12, 10, 20, 30, 0, time.UTC)
	if d, ok := doc.Key("created_at").DateValue(DateLayout); !ok || !d.Equal(want) {
		t.Errorf("expected date %v, got %v", want, d)
	}

	if u, ok := doc.Key("stream_url").URLValue(); !ok || u.Host != "api.soundcloud.com" {
		t.Errorf("expected absolute url, got %v", u)
	}
	if _, ok := doc.Key("relative").URLValue(); ok {
		t.Error("expected relative url to be rejected")
	}

	if !doc.Key("nothing").IsNull() || !doc.Key("missing").IsNull() {
		t.Error("expected null and missing keys to be null")
	}
	if !doc.Key("list").Index(5).IsNull() || !doc.Key("title").Key("x").IsNull() {
		t.Error("expected out of range and non-object lookups to be null")
	}
	if n, _ := doc.Key("list").Index(1).IntValue(); n != 2 {
		t.Errorf("expected list[1] == 2, got %d", n)
	}
}

func TestCompactMapJSON(t *testing.T) {
	doc, err := DecodeJSON([]byte(`[{"id": 1}, {"name": "no id"}, {"id": 3}]`))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	ids, ok := CompactMapJSON(doc, func(j JSON) (int, bool) {
		return j.Key("id").IntValue()
	})
	if !ok {
		t.Fatal("expected array")
	}
	if diff := cmp.Diff([]int{1, 3}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	if _, ok := CompactMapJSON(doc.Index(0), func(j JSON) (int, bool) { return 0, true }); ok {
		t.Error("expected object to be rejected")
	}

	all, ok := MapJSON(doc, func(j JSON) bool { return j.Key("id").IsNull() })
	if !ok || len(all) != 3 || !all[1] {
		t.Errorf("expected MapJSON to keep every element, got %v", all)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "truncated document", body: `{"collection": [`},
		{name: "trailing markup", body: `{"collection": [], "next_href": null} <html>proxy error</html>`},
		{name: "second document", body: `{"id": 1} {"id": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeJSON([]byte(tt.body)); err == nil {
				t.Errorf("expected error for %q", tt.body)
			}
		})
	}
}

func TestDecodeJSON_TrailingWhitespace(t *testing.T) {
	j, err := DecodeJSON([]byte("{\"id\": 1}\n  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := j.Key("id").IntValue(); !ok || id != 1 {
		t.Errorf("expected id 1, got %v", id)
	}
}
