package phantom

import (
	"strings"
	"testing"
)

func TestRenderModalForm(t *testing.T) {
	lines := renderForm("steve", 7, `{"type":"modal","title":"Quit?","content":"Really","button1":"Yes","button2":"No"}`)
	want := []string{
		"[FORM#7] steve received modal:",
		"[FORM#7] Title: Quit?",
		"[FORM#7] Content: Really",
		"[FORM#7] Yes => true",
		"[FORM#7] No => false",
	}
	assertLines(t, lines, want)
}

func TestRenderMenuForm(t *testing.T) {
	data := `{"type":"form","title":"Menu","content":"Pick","buttons":[
		{"text":"Play"},
		{"text":"Shop","image":{"type":"path","data":"textures/shop"}}
	]}`
	want := []string{
		"[FORM#1] steve received form:",
		"[FORM#1] Title: Menu",
		"[FORM#1] Content: Pick",
		"[FORM#1] Close => null",
		"[FORM#1] Option Play => 0",
		"[FORM#1] Option Shop path:textures/shop => 1",
	}
	assertLines(t, renderForm("steve", 1, data), want)
}

func TestRenderCustomForm(t *testing.T) {
	data := `{"type":"custom_form","title":"Settings","content":[
		{"type":"label","text":"Hello"},
		{"type":"toggle","text":"Sound","default":true},
		{"type":"slider","text":"Volume","min":0,"max":10,"step":2,"default":4},
		{"type":"step_slider","text":"Speed","steps":["slow","fast"],"default":1},
		{"type":"dropdown","text":"Mode","options":["a","b"]},
		{"type":"input","text":"Nick","placeholder":"name","default":"bob"},
		{"type":"wheel"}
	]}`
	want := []string{
		"[FORM#3] steve received custom_form:",
		"[FORM#3] Title: Settings",
		"[FORM#3] [",
		"[FORM#3]      Label: Hello => null ,",
		"[FORM#3]      Toggle: Sound => true | false = true ,",
		"[FORM#3]      Slider: Volume => 0-10 (step: 2) = 4 ,",
		"[FORM#3]      Step Slider: Speed => slow => 0, fast => 1 = 1 ,",
		"[FORM#3]      Dropdown: Mode => a => 0, b => 1 ,",
		"[FORM#3]      Input: Nick (name) = bob ,",
		`[FORM#3]      Unknown element: {"type":"wheel"} ,`,
		"[FORM#3] ]",
	}
	assertLines(t, renderForm("steve", 3, data), want)
}

func TestRenderFormNeverFails(t *testing.T) {
	lines := renderForm("steve", 9, "{not json")
	if len(lines) != 1 || !strings.Contains(lines[0], "malformed form") {
		t.Fatalf("unexpected malformed rendering %q", lines)
	}
	lines = renderForm("steve", 9, `{"type":"hologram"}`)
	if len(lines) != 2 || !strings.Contains(lines[1], "Unknown form") {
		t.Fatalf("unexpected unknown form rendering %q", lines)
	}
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("line count: got %d want %d\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}
