package nutrition

import (
	"encoding/json"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	valid := map[string]TimeOfDay{"6": 6, "06": 6, "06h": 6, "06:00": 6, " 23H ": 23, "0": 0}
	for in, want := range valid {
		got, err := ParseTimeOfDay(in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"", "24", "-1", "06:30", "noon"} {
		if _, err := ParseTimeOfDay(in); err == nil {
			t.Errorf("ParseTimeOfDay(%q): expected error", in)
		}
	}
}

func TestTimeOfDay_Labels(t *testing.T) {
	tod := TimeOfDay(6)
	if tod.String() != "06:00" {
		t.Errorf("expected 06:00, got %s", tod.String())
	}
	if tod.Label() != "06h" {
		t.Errorf("expected 06h, got %s", tod.Label())
	}
	if _, err := TimeOfDay(24).MarshalText(); err == nil {
		t.Error("expected error marshaling hour 24")
	}
}

func TestSchedule_Count(t *testing.T) {
	cases := []struct {
		name string
		s    Schedule
		want int
	}{
		{"empty", Schedule{}, 0},
		{"three times", hours(6, 12, 18), 3},
		{"duplicates collapse", hours(6, 6, 12), 2},
		{"invalid ignored", Schedule{Times: []TimeOfDay{6, 30}}, 1},
		{"other counts once", Schedule{Times: []TimeOfDay{8}, Other: "se necessário"}, 2},
		{"blank other ignored", Schedule{Other: "   "}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.s.Count(); got != c.want {
				t.Errorf("expected %d, got %d", c.want, got)
			}
		})
	}
}

func TestSchedule_SortedAscending(t *testing.T) {
	got := hours(22, 6, 14, 6).Sorted()
	want := []TimeOfDay{6, 14, 22}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestMealSchedule(t *testing.T) {
	ms := MealSchedule{Dinner, Breakfast, Dinner, MealSlot(42)}
	if ms.Count() != 2 {
		t.Errorf("expected 2 meals, got %d", ms.Count())
	}
	sorted := ms.Sorted()
	if sorted[0] != Breakfast || sorted[1] != Dinner {
		t.Errorf("unexpected order: %v", sorted)
	}
	if Lunch.Label() != "almoço" {
		t.Errorf("expected almoço, got %s", Lunch.Label())
	}
}

func TestEnteralPrescription_JSONTimeKeys(t *testing.T) {
	payload := `{
		"system_type": "closed",
		"infusion_mode": "pump",
		"formulas": [{"formula_id": "6f1c2a4e-0000-4000-8000-000000000001", "rate_ml_per_hour": 50, "duration_hours": 20,
			"schedule": {"times": ["06:00", "18h"]}}],
		"bag_quantities": {"06:00": 1, "18": 1}
	}`
	var e EnteralPrescription
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.BagQuantities[6] != 1 || e.BagQuantities[18] != 1 {
		t.Errorf("unexpected bag quantities: %v", e.BagQuantities)
	}
	if e.Formulas[0].Schedule.Count() != 2 {
		t.Errorf("expected 2 scheduled times, got %d", e.Formulas[0].Schedule.Count())
	}

	out, err := json.Marshal(e.BagQuantities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `{"06:00":1,"18:00":1}` {
		t.Errorf("unexpected encoding: %s", out)
	}
}

func TestOralSupplementLine_JSONMeals(t *testing.T) {
	var line OralSupplementLine
	err := json.Unmarshal([]byte(`{"formula_id":"6f1c2a4e-0000-4000-8000-000000000003","amount_per_administration_ml":200,"meals":["breakfast","supper"]}`), &line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Meals.Count() != 2 || line.Meals[1] != Supper {
		t.Errorf("unexpected meals: %v", line.Meals)
	}
	if err := json.Unmarshal([]byte(`{"meals":["brunch"]}`), &line); err == nil {
		t.Error("expected error for unknown meal")
	}
}
