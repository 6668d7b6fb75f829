package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	cases := map[string]bool{
		"true": true, "1": true, "YES": true, " on ": true,
		"false": false, "0": false, "": false, "maybe": false,
	}
	for v, want := range cases {
		t.Setenv(EnvName(SummaryCache), v)
		if got := Enabled(SummaryCache); got != want {
			t.Errorf("FLAG_SUMMARY_CACHE=%q: got %v, want %v", v, got, want)
		}
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("summary_cache"); got != "FLAG_SUMMARY_CACHE" {
		t.Fatalf("unexpected env name %q", got)
	}
}
