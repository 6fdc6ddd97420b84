package domain

import (
	"encoding/json"
	"net/url"
	"testing"
)

func TestParams_Encode(t *testing.T) {
	p := Params{}.Add("z", 1).Add("a", "x y").Add("m", true)

	if got, want := p.Encode(), "z=1&a=x+y&m=true"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestParams_MarshalJSONKeepsOrder(t *testing.T) {
	p := Params{}.Add("z", 1).Add("a", []int{1, 2}).Add("m", nil)

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(b), `{"z":1,"a":[1,2],"m":null}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestParams_Get(t *testing.T) {
	p := Params{}.Add("a", 1).Add("a", 2)

	v, ok := p.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want first value", v, ok)
	}
	if _, ok := p.Get("missing"); ok {
		t.Error("Get(missing) reported a value")
	}
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		want    string
		wantErr bool
	}{
		{"nil", nil, "", false},
		{"params", Params{{"b", 2}, {"a", 1}}, "b=2&a=1", false},
		{"url values", url.Values{"q": {"go"}}, "q=go", false},
		{"string map", map[string]string{"b": "2", "a": "1"}, "a=1&b=2", false},
		{"any map", map[string]any{"b": 2, "a": "x"}, "a=x&b=2", false},
		{"raw string", "?page=2", "page=2", false},
		{"unsupported", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeQuery(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("EncodeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
