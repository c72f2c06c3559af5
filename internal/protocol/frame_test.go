package protocol

import (
	"bytes"
	"testing"
)

func TestFrameBytes(t *testing.T) {
	frame := Frame{NewSizedField(0xFDFD, 2), NewField(0x02), BytesField([]byte("ab")), ExpandingBytesField([]byte{0xFF, 0x00, 0x01})}

	got, err := frame.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	want := []byte{0xFD, 0xFD, 0x02, 'a', 'b', 0xFF, 0x00, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = % X, want % X", got, want)
	}
	if frame.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", frame.Len(), len(want))
	}
}

func TestFrameBytesUnresolved(t *testing.T) {
	frame := Frame{NewField(1), TemplateField(2)}
	if _, err := frame.Bytes(); err == nil {
		t.Error("Bytes() should fail on a pending field")
	}
}

func TestFrameParse(t *testing.T) {
	template := Frame{TemplateField(2), TemplateField(1), ExpandingField(), TemplateField(2)}

	tests := []struct {
		name     string
		buf      []byte
		wantOK   bool
		wantData []byte
	}{
		{
			name:     "expanding takes the middle",
			buf:      []byte{0xFD, 0xFD, 0x02, 0xAA, 0xBB, 0xCC, 0x12, 0x34},
			wantOK:   true,
			wantData: []byte{0xAA, 0xBB, 0xCC},
		},
		{
			name:     "empty expanding",
			buf:      []byte{0xFD, 0xFD, 0x02, 0x12, 0x34},
			wantOK:   true,
			wantData: []byte{},
		},
		{
			name:   "shorter than fixed fields",
			buf:    []byte{0xFD, 0xFD, 0x02, 0x12},
			wantOK: false,
		},
		{
			name:   "empty buffer",
			buf:    nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := template.Parse(tt.buf)
			if ok != tt.wantOK {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			data, err := got[2].Bytes()
			if err != nil {
				t.Fatalf("expanding field: %v", err)
			}
			if !bytes.Equal(data, tt.wantData) {
				t.Errorf("expanding = % X, want % X", data, tt.wantData)
			}
			if got[3].Uint() != 0x1234 {
				t.Errorf("trailer = 0x%04X, want 0x1234", got[3].Uint())
			}
		})
	}
}

func TestFrameParsePartial(t *testing.T) {
	template := Frame{TemplateField(2), TemplateField(1), ExpandingField(), TemplateField(2)}

	got, ok := template.Parse([]byte{0xFD, 0xFD, 0x02, 0x12})
	if ok {
		t.Fatal("Parse() should report a shortfall")
	}
	if !got[0].IsResolved() || !got[1].IsResolved() {
		t.Error("leading fields that fit should be filled")
	}
	if got[3].IsResolved() {
		t.Error("trailing field should stay pending")
	}
}

func TestFrameParseLeftover(t *testing.T) {
	template := Frame{TemplateField(1), TemplateField(1)}
	if _, ok := template.Parse([]byte{1, 2, 3}); ok {
		t.Error("Parse() should reject leftover bytes without an expanding field")
	}
	if _, ok := template.Parse([]byte{1, 2}); !ok {
		t.Error("Parse() should accept an exact fit")
	}
}

func TestFrameParseDoesNotModifyTemplate(t *testing.T) {
	template := Frame{TemplateField(1), ExpandingField()}
	template.Parse([]byte{1, 2, 3})
	if template[0].IsResolved() || template[1].IsResolved() {
		t.Error("Parse() must fill a copy")
	}
}
