package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_SERVICE", " shelfsync ")
	t.Setenv("CORE_API_PORT", "4000")
	t.Setenv("LOG_FORMAT", "   ")

	log := New().Prefix("LOG_")
	api := New().Prefix("CORE_").Prefix("API_")

	cases := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{name: "trimmed", conf: log, key: "SERVICE", def: "x", want: "shelfsync"},
		{name: "nested prefix", conf: api, key: "PORT", def: "8080", want: "4000"},
		{name: "blank falls back", conf: log, key: "FORMAT", def: "console", want: "console"},
		{name: "unset falls back", conf: log, key: "COMPONENT", def: "", want: ""},
		{name: "root view", conf: New(), key: "LOG_SERVICE", def: "x", want: "shelfsync"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.conf.Get(tc.key, tc.def); got != tc.want {
				t.Fatalf("Get(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestGetBool(t *testing.T) {
	env := map[string]string{
		"LOG_CALLER": "Yes",
		"LOG_A":      "1",
		"LOG_B":      " TRUE ",
		"LOG_C":      "off",
		"LOG_D":      "0",
		"LOG_E":      "enabled",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
	c := New().Prefix("LOG_")

	cases := []struct {
		key  string
		def  bool
		want bool
	}{
		{"CALLER", false, true},
		{"A", false, true},
		{"B", false, true},
		{"C", true, false},
		{"D", true, false},
		{"E", true, false},
		{"UNSET", true, true},
		{"UNSET", false, false},
	}
	for _, tc := range cases {
		if got := c.GetBool(tc.key, tc.def); got != tc.want {
			t.Fatalf("GetBool(%q, %v) = %v, want %v", tc.key, tc.def, got, tc.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("LOG_SAMPLE_EVERY", " 10 ")
	t.Setenv("LOG_ZERO", "0")
	t.Setenv("LOG_NEG", "-3")
	t.Setenv("LOG_HEX", "0x10")
	t.Setenv("LOG_FLOAT", "2.5")
	c := New().Prefix("LOG_")

	cases := []struct {
		key  string
		def  int
		want int
	}{
		{"SAMPLE_EVERY", 0, 10},
		{"ZERO", 7, 0},
		{"NEG", 7, 7},
		{"HEX", 7, 7},
		{"FLOAT", 7, 7},
		{"UNSET", 3, 3},
	}
	for _, tc := range cases {
		if got := c.GetInt(tc.key, tc.def); got != tc.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tc.key, got, tc.want)
		}
	}
}
