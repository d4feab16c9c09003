package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseEnvelopeSendKey(t *testing.T) {
	data := []byte(`{"type":"send_key","payload":{"phase":"down","scan_code":30,"modifiers":["shift","ctrl"]}}`)
	env, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Type != TypeSendKey {
		t.Errorf("Expected type %s, got %s", TypeSendKey, env.Type)
	}

	var p KeyPayload
	if err := env.Decode(&p); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.Phase != PhaseDown {
		t.Errorf("Expected phase down, got %s", p.Phase)
	}
	if p.ScanCode == nil || *p.ScanCode != 30 {
		t.Errorf("Expected scan code 30, got %v", p.ScanCode)
	}
	if len(p.Modifiers) != 2 || p.Modifiers[0] != "shift" {
		t.Errorf("Unexpected modifiers %v", p.Modifiers)
	}
}

func TestParseEnvelopeErrors(t *testing.T) {
	if _, err := ParseEnvelope([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := ParseEnvelope([]byte(`{"payload":{}}`)); err == nil {
		t.Error("Expected error for missing type")
	}

	env, err := ParseEnvelope([]byte(`{"type":"hello","payload":{"window":"abc"}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	var hello HelloPayload
	if err := env.Decode(&hello); err == nil {
		t.Error("Expected error for mistyped payload")
	}
}

func TestDecodeWithoutPayload(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"type":"toggle_active"}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	var v VisibilityPayload
	if err := env.Decode(&v); err != nil {
		t.Errorf("Expected absent payload to decode cleanly, got %v", err)
	}
}

func TestNavMoveWireFormat(t *testing.T) {
	msg := Message{
		Type: TypeNavMove,
		Payload: NavMovePayload{
			Phase:     PhaseDown,
			Dx:        1,
			Source:    "gamepad",
			Magnitude: 1.0,
			Timestamp: 1700000000000,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"type":"osk:nav:move","payload":{"phase":"down","dx":1,"dy":0,"source":"gamepad","magnitude":1,"ts":1700000000000}}`
	if string(data) != want {
		t.Errorf("Unexpected wire format:\n got %s\nwant %s", data, want)
	}
}

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{PhaseDown, PhaseUp, PhaseRepeat} {
		if !p.Valid() {
			t.Errorf("Expected %s to be valid", p)
		}
	}
	if Phase("hold").Valid() {
		t.Error("Expected unknown phase to be invalid")
	}
}
