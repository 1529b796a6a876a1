package token

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantTyp Type
		wantOK  bool
	}{
		{"if", KwIf, true},
		{"repeat", KwRepeat, true},
		{"struct", KwStruct, true},
		{"foo", 0, false},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.name)
		if ok != tt.wantOK {
			t.Errorf("Lookup(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.wantTyp {
			t.Errorf("Lookup(%q) = %v, want %v", tt.name, got, tt.wantTyp)
		}
	}
}

func TestPosStringIsZeroForMissingMain(t *testing.T) {
	if got, want := (Pos{}).String(), "0:0"; got != want {
		t.Errorf("zero Pos.String() = %q, want %q", got, want)
	}
}

func TestTypeStringUnknown(t *testing.T) {
	if got := Type(9999).String(); got != "Type(9999)" {
		t.Errorf("String() of unknown type = %q", got)
	}
}
