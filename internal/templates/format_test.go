package templates

import (
	"strings"
	"testing"
)

func TestRupiah(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5000, "Rp5.000"},
		{15000, "Rp15.000"},
		{1250000, "Rp1.250.000"},
		{0, "Rp0"},
	}
	for _, tt := range tests {
		if got := Rupiah(tt.in); got != tt.want {
			t.Errorf("Rupiah(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParkingCount(t *testing.T) {
	for n, want := range map[int]string{0: "0", 4: "4", 5: "+5", 20: "+5"} {
		if got := ParkingCount(n); got != want {
			t.Errorf("ParkingCount(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestKilometres(t *testing.T) {
	d := 2.14
	if got := Kilometres(&d); got != "2.1 km" {
		t.Errorf("Kilometres = %q", got)
	}
	if got := Kilometres(nil); got != "" {
		t.Errorf("Kilometres(nil) = %q, want empty", got)
	}
}

func TestRenderFragments(t *testing.T) {
	r, err := New("../../web/templates/fragments")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	html, err := r.Render("empty-state", map[string]string{"Title": "Not found."})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "Not found.") {
		t.Errorf("empty-state = %s", html)
	}

	html, err = r.Render("select-option", struct{ Value, Label string }{"specialty", "Specialty"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if html != `<option value="specialty">Specialty</option>` {
		t.Errorf("select-option = %s", html)
	}

	if _, err := r.Render("missing", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}
