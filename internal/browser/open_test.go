package browser

import (
	"testing"
)

func TestCommand(t *testing.T) {
	const url = "https://accounts.spotify.com/authorize?x=1"

	tests := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := command(tt.goos, url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("command() error = %v, wantErr %v", err, tt.wantErr)
			}
			if name != tt.want {
				t.Errorf("command() = %q, want %q", name, tt.want)
			}
			if !tt.wantErr && args[len(args)-1] != url {
				t.Errorf("last arg = %q, want the URL", args[len(args)-1])
			}
		})
	}
}
