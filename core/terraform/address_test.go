package terraform

import "testing"

func TestAddressResourcePart(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"aws_instance.web", "aws_instance.web"},
		{"module.app.aws_instance.web", "aws_instance.web"},
		{"module.app.module.db.aws_ebs_volume.data", "aws_ebs_volume.data"},
		{"aws_instance.web[0]", "aws_instance.web[0]"},
		{"module.db", "module.db"},
		{"module.app.module.db", "module.db"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := addressResourcePart(tt.address); got != tt.want {
				t.Errorf("addressResourcePart(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestStripAddressArray(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aws_instance.web", "aws_instance.web"},
		{"aws_instance.web[0]", "aws_instance.web"},
		{`aws_instance.web["blue"]`, "aws_instance.web"},
		{"module.app[1].aws_instance.web[2]", "module.app.aws_instance.web"},
	}

	for _, tt := range tests {
		if got := stripAddressArray(tt.in); got != tt.want {
			t.Errorf("stripAddressArray(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseModuleName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"module.storage", "storage"},
		{"module.storage[0]", "storage"},
		{"module.app.module.db", "app"},
		{"aws_instance.web", ""},
	}

	for _, tt := range tests {
		if got := parseModuleName(tt.in); got != tt.want {
			t.Errorf("parseModuleName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQualify(t *testing.T) {
	tests := []struct {
		module string
		name   string
		want   string
	}{
		{"", "aws_instance.web", "aws_instance.web"},
		{"module.app", "aws_instance.web", "module.app.aws_instance.web"},
	}

	for _, tt := range tests {
		if got := qualify(tt.module, tt.name); got != tt.want {
			t.Errorf("qualify(%q, %q) = %q, want %q", tt.module, tt.name, got, tt.want)
		}
	}
}

func TestReferenceCandidates(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"aws_ebs_volume.data", []string{"aws_ebs_volume.data"}},
		{"aws_ebs_volume.data.id", []string{"aws_ebs_volume.data.id", "aws_ebs_volume.data"}},
		{"module.app.aws_instance.web.id", []string{"module.app.aws_instance.web.id", "module.app.aws_instance.web"}},
		{"data.aws_ami.base.id", []string{"data.aws_ami.base.id", "data.aws_ami.base"}},
	}

	for _, tt := range tests {
		got := referenceCandidates(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("referenceCandidates(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("referenceCandidates(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
