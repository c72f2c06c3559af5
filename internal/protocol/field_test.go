package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewFieldAutoSize(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero takes one byte", 0, []byte{0x00}},
		{"one byte", 0xB9, []byte{0xB9}},
		{"two bytes", 0x012C, []byte{0x01, 0x2C}},
		{"header", 0xFDFD, []byte{0xFD, 0xFD}},
		{"three bytes", 0x010000, []byte{0x01, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField(tt.value)
			got, err := f.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Bytes() = % X, want % X", got, tt.want)
			}
			if f.Size() != len(tt.want) {
				t.Errorf("Size() = %d, want %d", f.Size(), len(tt.want))
			}
			if f.Uint() != tt.value {
				t.Errorf("Uint() = %d, want %d", f.Uint(), tt.value)
			}
		})
	}
}

func TestNewSizedField(t *testing.T) {
	got, _ := NewSizedField(0x05, 2).Bytes()
	if !bytes.Equal(got, []byte{0x00, 0x05}) {
		t.Errorf("padded field = % X, want 00 05", got)
	}

	got, _ = NewSizedField(0x1234, 1).Bytes()
	if !bytes.Equal(got, []byte{0x34}) {
		t.Errorf("narrowed field = % X, want 34", got)
	}
}

func TestTemplateField(t *testing.T) {
	f := TemplateField(2)
	if f.IsResolved() {
		t.Fatal("template should be pending")
	}
	if _, err := f.Bytes(); !errors.Is(err, ErrUnresolvedField) {
		t.Errorf("Bytes() error = %v, want ErrUnresolvedField", err)
	}

	filled, err := f.Fill([]byte{0x01, 0x2C})
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if !filled.IsResolved() || filled.Uint() != 300 {
		t.Errorf("filled = %v, want resolved 300", filled)
	}

	if _, err := f.Fill([]byte{0x01}); err == nil {
		t.Error("Fill() with wrong length should fail")
	}
}

func TestExpandingFieldFill(t *testing.T) {
	f := ExpandingField()
	if !f.IsExpanding() || f.Size() != 0 {
		t.Fatalf("expanding template = %v", f)
	}

	filled, err := f.Fill([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if filled.Size() != 4 || !filled.IsExpanding() {
		t.Errorf("filled = %v, want 4 expanding bytes", filled)
	}
}

func TestBytesFieldCopies(t *testing.T) {
	src := []byte("1111")
	f := BytesField(src)
	src[0] = 'X'

	got, _ := f.Bytes()
	if string(got) != "1111" {
		t.Errorf("Bytes() = %q, field must not alias its input", got)
	}
}
