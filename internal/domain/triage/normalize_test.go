package triage

import "testing"

func TestNormalizeVitals(t *testing.T) {
	got := NormalizeVitals(map[string]string{
		"bp":     "120/80",
		"pulse":  "72",
		"temp":   "98.6",
		"weight": "  70.5 ",
		"spo2":   "",
		"height": "abc",
	})

	if got["bp"] != "120/80" {
		t.Errorf("bp = %v, want literal reading", got["bp"])
	}
	if got["pulse"] != 72.0 {
		t.Errorf("pulse = %v, want 72", got["pulse"])
	}
	if got["temp"] != 98.6 {
		t.Errorf("temp = %v, want 98.6", got["temp"])
	}
	if got["weight"] != 70.5 {
		t.Errorf("weight = %v, want trimmed 70.5", got["weight"])
	}
	if _, ok := got["spo2"]; ok {
		t.Error("blank reading should be dropped")
	}
	if _, ok := got["height"]; ok {
		t.Error("unparseable reading should be dropped")
	}
}

func TestNormalizeVitals_DropsNaN(t *testing.T) {
	got := NormalizeVitals(map[string]string{"pulse": "NaN", "temp": "+Inf"})
	if len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}

func TestNormalizeVitals_AllBlank(t *testing.T) {
	got := NormalizeVitals(map[string]string{"bp": "", "pulse": "  "})
	if len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}
