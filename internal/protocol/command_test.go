package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name     string
		deviceID string
		password string
		wantErr  error
	}{
		{"valid", "003A00345753560A", "1111", nil},
		{"empty password", "003A00345753560A", "", nil},
		{"empty device id", "", "1111", ErrEmptyDeviceID},
		{"device id too long", strings.Repeat("a", 256), "1111", ErrFieldTooLong},
		{"password too long", "abc", strings.Repeat("p", 256), ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.deviceID, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewLayout() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildCommand(t *testing.T) {
	layout, err := NewLayout("AB", "12")
	if err != nil {
		t.Fatal(err)
	}

	data := []byte{0xFF, 0x00, 0xB9}
	got, err := layout.BuildCommand(FuncRead, data)
	if err != nil {
		t.Fatalf("BuildCommand() error = %v", err)
	}

	body := []byte{0x02, 0x02, 'A', 'B', 0x02, '1', '2', 0x01, 0xFF, 0x00, 0xB9}
	sum := Checksum(body)
	want := append([]byte{0xFD, 0xFD}, body...)
	want = append(want, byte(sum>>8), byte(sum))

	if !bytes.Equal(got, want) {
		t.Errorf("BuildCommand() = % X, want % X", got, want)
	}
}

func TestBuildCommandEmptyPassword(t *testing.T) {
	withPwd, _ := NewLayout("DEVICE01", "1111")
	noPwd, _ := NewLayout("DEVICE01", "")
	data := EncodeBlock(ReadRequest(0x01, 0x02))

	full, err := withPwd.BuildCommand(FuncRead, data)
	if err != nil {
		t.Fatal(err)
	}
	short, err := noPwd.BuildCommand(FuncRead, data)
	if err != nil {
		t.Fatal(err)
	}

	if len(full)-len(short) != len("1111") {
		t.Errorf("length difference = %d, want %d", len(full)-len(short), len("1111"))
	}

	// header, type, idLen, id, then the zero pwdLen directly followed by func
	pwdLenAt := 2 + 1 + 1 + len("DEVICE01")
	if short[pwdLenAt] != 0x00 {
		t.Errorf("pwdLen = 0x%02X, want 0x00", short[pwdLenAt])
	}
	if Function(short[pwdLenAt+1]) != FuncRead {
		t.Errorf("byte after pwdLen = 0x%02X, want function 0x01", short[pwdLenAt+1])
	}
	if bytes.Contains(short, []byte("1111")) {
		t.Error("password bytes must not appear")
	}
}

func TestCommandFrameLayout(t *testing.T) {
	layout, _ := NewLayout("ID", "")
	frame := layout.CommandFrame(FuncReadWrite, []byte{1, 2, 3})

	// header, type, idLen, id, pwdLen, func, data, checksum
	if len(frame) != 8 {
		t.Fatalf("frame has %d fields, want 8", len(frame))
	}
	if !frame[6].IsExpanding() || frame[6].Size() != 3 {
		t.Errorf("data field = %v", frame[6])
	}
	if frame[7].IsResolved() {
		t.Error("checksum must be a template until BuildCommand")
	}
}

// buildResponse assembles a response datagram the way a fan does.
func buildResponse(deviceID string, pwdLen byte, fn Function, data []byte, corrupt bool) []byte {
	body := []byte{ProtocolType, byte(len(deviceID))}
	body = append(body, deviceID...)
	body = append(body, pwdLen, byte(fn))
	body = append(body, data...)
	sum := Checksum(body)
	if corrupt {
		sum ^= 0xFFFF
	}
	out := append([]byte{0xFD, 0xFD}, body...)
	return append(out, byte(sum>>8), byte(sum))
}

func TestParseResponse(t *testing.T) {
	layout, _ := NewLayout("003A00345753560A", "1111")
	data := []byte{0xFF, 0x00, 0xB9, 0x05}

	resp := layout.ParseResponse(buildResponse("003A00345753560A", 4, FuncReadWrite, data, false))
	if !resp.Complete {
		t.Fatal("Complete = false")
	}
	if !resp.ChecksumValid() {
		t.Errorf("checksum 0x%04X, expected 0x%04X", resp.Checksum, resp.Expected)
	}
	if !bytes.Equal(resp.Data, data) {
		t.Errorf("Data = % X, want % X", resp.Data, data)
	}
	if resp.Function != FuncReadWrite {
		t.Errorf("Function = %v, want read-write", resp.Function)
	}
	if string(resp.DeviceID) != "003A00345753560A" {
		t.Errorf("DeviceID = %q", resp.DeviceID)
	}
	if resp.HeaderBroken {
		t.Error("HeaderBroken = true")
	}
}

func TestParseResponseChecksumMismatch(t *testing.T) {
	layout, _ := NewLayout("ID", "1111")
	data := []byte{0x01, 0x01}

	resp := layout.ParseResponse(buildResponse("ID", 4, FuncRead, data, true))
	if !resp.Complete {
		t.Fatal("a mismatched checksum must still parse")
	}
	if resp.ChecksumValid() {
		t.Error("ChecksumValid() = true for a corrupted checksum")
	}
	if !bytes.Equal(resp.Data, data) {
		t.Errorf("Data = % X, want % X", resp.Data, data)
	}
}

func TestParseResponseShort(t *testing.T) {
	layout, _ := NewLayout("003A00345753560A", "1111")

	for _, raw := range [][]byte{nil, {0xFD, 0xFD, 0x02}, make([]byte, 10)} {
		resp := layout.ParseResponse(raw)
		if resp.Complete || len(resp.Data) != 0 {
			t.Errorf("ParseResponse(% X) = %+v, want empty incomplete response", raw, resp)
		}
	}
}

func TestInspectResponse(t *testing.T) {
	raw := buildResponse("UNIT0001", 0, FuncRead, []byte{0xFE, 0x02, 0x7C, 'O', 'K'}, false)

	resp := InspectResponse(raw)
	if !resp.Complete || !resp.ChecksumValid() {
		t.Fatalf("InspectResponse() = %+v", resp)
	}
	if string(resp.DeviceID) != "UNIT0001" {
		t.Errorf("DeviceID = %q, want UNIT0001", resp.DeviceID)
	}

	if InspectResponse([]byte{0xFD}).Complete {
		t.Error("one byte datagram must not parse")
	}
}
