package expression

import (
	"testing"

	"github.com/shopspring/decimal"
)

const sampleJSON = `{
	"name": "web",
	"size": 50,
	"encrypted": true,
	"iops": "3000",
	"tags": null,
	"block_devices": [
		{"device_name": "/dev/sda1", "volume_size": 10},
		{"device_name": "/dev/sdb", "volume_size": 20}
	]
}`

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("expected object, got kind %d", v.Kind())
	}

	if _, err := FromJSON([]byte("{nope")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestGetPath(t *testing.T) {
	v, err := FromJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		exists bool
		str    string
	}{
		{name: "top-level string", path: "name", exists: true, str: "web"},
		{name: "top-level number", path: "size", exists: true, str: "50"},
		{name: "array index", path: "block_devices.1.volume_size", exists: true, str: "20"},
		{name: "missing key", path: "nope", exists: false, str: ""},
		{name: "missing nested key", path: "block_devices.0.nope", exists: false, str: ""},
		{name: "index out of range", path: "block_devices.5", exists: false, str: ""},
		{name: "non-numeric index", path: "block_devices.first", exists: false, str: ""},
		{name: "path through scalar", path: "name.x", exists: false, str: ""},
		{name: "null is present", path: "tags", exists: true, str: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Get(tt.path)
			if got.Exists() != tt.exists {
				t.Errorf("Exists() = %v, want %v", got.Exists(), tt.exists)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestAbsentIsNotNull(t *testing.T) {
	v, _ := FromJSON([]byte(sampleJSON))

	if !v.Get("tags").IsNull() {
		t.Error("expected tags to be null")
	}
	if v.Get("missing").IsNull() {
		t.Error("absent value must not report null")
	}
	if v.Get("missing").Exists() {
		t.Error("absent value must not exist")
	}
}

func TestDecimalExtraction(t *testing.T) {
	v, _ := FromJSON([]byte(sampleJSON))

	if got := v.Get("size").Decimal(); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("size = %s, want 50", got)
	}
	// Numeric strings parse too.
	if got := v.Get("iops").Decimal(); !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("iops = %s, want 3000", got)
	}
	if got := v.Get("name").Decimal(); !got.IsZero() {
		t.Errorf("non-numeric string = %s, want 0", got)
	}

	def := decimal.NewFromInt(8)
	if got := v.Get("missing").DecimalOr(def); !got.Equal(def) {
		t.Errorf("DecimalOr on absent = %s, want 8", got)
	}
	if got := v.Get("size").DecimalOr(def); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("DecimalOr on present = %s, want 50", got)
	}
}

func TestArrayAndObjectAccess(t *testing.T) {
	v, _ := FromJSON([]byte(sampleJSON))

	devices := v.Field("block_devices")
	if devices.Len() != 2 {
		t.Fatalf("expected 2 block devices, got %d", devices.Len())
	}
	if got := devices.Index(0).Field("device_name").String(); got != "/dev/sda1" {
		t.Errorf("device_name = %q", got)
	}
	if devices.Index(-1).Exists() {
		t.Error("negative index must be absent")
	}
	if got := len(devices.ArrayValues()); got != 2 {
		t.Errorf("ArrayValues len = %d", got)
	}
	if v.ArrayValues() != nil {
		t.Error("ArrayValues on object must be nil")
	}
}

func TestScalarCoercion(t *testing.T) {
	if got := Number(1.5).Float(); got != 1.5 {
		t.Errorf("Float() = %v", got)
	}
	if got := String("42").Int(); got != 42 {
		t.Errorf("Int() = %v", got)
	}
	if !Bool(true).Bool() {
		t.Error("Bool(true).Bool() = false")
	}
	if got := String("").StringOr("gp2"); got != "gp2" {
		t.Errorf("StringOr = %q, want gp2", got)
	}
	if got := Null().String(); got != "" {
		t.Errorf("Null().String() = %q", got)
	}
}
