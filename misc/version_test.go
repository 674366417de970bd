package misc

import "testing"

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion() returned empty string")
	}
}

func TestGetGitHash(t *testing.T) {
	if GetGitHash() == "" {
		t.Error("GetGitHash() returned empty string")
	}
}

func TestSetAppNameFromArgs(t *testing.T) {
	old := appName
	t.Cleanup(func() { appName = old })

	tests := []struct {
		arg0 string
		want string
	}{
		{"/usr/local/bin/fsxc", "fsxc"},
		{`fsx2docx.exe`, "fsx2docx"},
		{"", old},
	}
	for _, tt := range tests {
		appName = old
		SetAppNameFromArgs(tt.arg0)
		if appName != tt.want {
			t.Errorf("SetAppNameFromArgs(%q) => %q, want %q", tt.arg0, appName, tt.want)
		}
	}
}
