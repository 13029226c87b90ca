package gitutil

import "testing"

func TestPickRemote(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{
			name: "upstream preferred",
			out: "origin\tgit@gitlab.com:fork/widgets.git (fetch)\n" +
				"origin\tgit@gitlab.com:fork/widgets.git (push)\n" +
				"upstream\tgit@gitlab.com:acme/widgets.git (fetch)\n" +
				"upstream\tgit@gitlab.com:acme/widgets.git (push)\n",
			want: "git@gitlab.com:acme/widgets.git",
		},
		{
			name: "origin fallback",
			out:  "origin\thttps://gitlab.com/acme/widgets.git (fetch)\norigin\thttps://gitlab.com/acme/widgets.git (push)\n",
			want: "https://gitlab.com/acme/widgets.git",
		},
		{
			name: "first remote when neither named",
			out:  "backup\tgit@example.com:a/b.git (fetch)\n",
			want: "git@example.com:a/b.git",
		},
		{
			name:    "no remotes",
			out:     "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickRemote(tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pickRemote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("pickRemote() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripDescribeSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.0", "v1.2.0"},
		{"v1.2.0-4-g1a2b3c4", "v1.2.0"},
		{"release-2024-01", "release-2024-01"},
		{"v1.2.0-rc1-7-gdeadbee", "v1.2.0-rc1"},
	}
	for _, tt := range tests {
		if got := stripDescribeSuffix(tt.in); got != tt.want {
			t.Errorf("stripDescribeSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
