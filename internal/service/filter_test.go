package service

import (
	"math"
	"reflect"
	"testing"
)

func price(v float64) *float64 { return &v }

func names(locs []Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Name
	}
	return out
}

// fixture returns a small Yogyakarta catalog covering every filter stage.
func fixture() []Location {
	return []Location{
		{ID: "0", Name: "Kopi Klotok", Lat: -7.66, Lng: 110.42, Category: []string{"traditional", "garden"},
			Tubruk: price(5000), AC: true, Smoking: "Outdoor", Parking: Parking{Car: 20, Motor: 50}},
		{ID: "1", Name: "Angkringan X", Lat: -7.79, Lng: 110.36, Category: []string{"angkringan"},
			Tubruk: price(0), AC: false, Smoking: "anywhere", Parking: Parking{Car: 0, Motor: 10}},
		{ID: "2", Name: "Kopi Liong", Lat: -7.80, Lng: 110.37, Category: []string{"traditional"},
			Tubruk: price(12000), AC: true, Smoking: "AC room", Parking: Parking{Car: 4, Motor: 8}},
		{ID: "3", Name: "Specialty Lab", Lat: -7.77, Lng: 110.38, Category: []string{"specialty", "traditional"},
			AC: true, Smoking: "Smoking area (ac)", Parking: Parking{Car: 3, Motor: 15}},
	}
}

func TestApplyFilters(t *testing.T) {
	cases := []struct {
		name   string
		filter FilterState
		want   []string
	}{
		{"no filters", FilterState{}, []string{"Kopi Klotok", "Angkringan X", "Kopi Liong", "Specialty Lab"}},
		{"category primary", FilterState{Category: "angkringan"}, []string{"Angkringan X"}},
		{"category secondary", FilterState{Category: "traditional"}, []string{"Kopi Klotok", "Kopi Liong", "Specialty Lab"}},
		{"unknown category", FilterState{Category: "nope"}, []string{}},
		{"tubruk excludes zero and absent", FilterState{Tubruk: true}, []string{"Kopi Klotok", "Kopi Liong"}},
		{"ac", FilterState{AC: true}, []string{"Kopi Klotok", "Kopi Liong", "Specialty Lab"}},
		{"smoking ac case-insensitive", FilterState{SmokingAC: true}, []string{"Kopi Liong", "Specialty Lab"}},
		{"car friendly is strictly more than 3", FilterState{CarFriendly: true}, []string{"Kopi Klotok", "Kopi Liong"}},
		{"search lower", FilterState{Search: "kopi"}, []string{"Kopi Klotok", "Kopi Liong"}},
		{"search upper", FilterState{Search: "KOPI"}, []string{"Kopi Klotok", "Kopi Liong"}},
		{"search no match", FilterState{Search: "tea"}, []string{}},
		{"combined and", FilterState{Category: "traditional", AC: true, CarFriendly: true}, []string{"Kopi Klotok", "Kopi Liong"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := names(ApplyFilters(fixture(), tc.filter, nil))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ApplyFilters(%+v) = %v; want %v", tc.filter, got, tc.want)
			}
		})
	}
}

func TestApplyFiltersTubrukScenario(t *testing.T) {
	all := []Location{
		{Name: "A", Lat: -7.80, Lng: 110.36, Category: []string{"c"}, Tubruk: price(5000), AC: true},
		{Name: "B", Lat: -7.79, Lng: 110.37, Category: []string{"c"}, Tubruk: price(0), AC: false},
		{Name: "C", Lat: -7.78, Lng: 110.38, Category: []string{"c"}, Tubruk: price(12000), AC: true},
	}
	got := names(ApplyFilters(all, FilterState{Tubruk: true}, nil))
	if want := []string{"A", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v; want %v", got, want)
	}
}

func TestApplyFiltersSearchScenario(t *testing.T) {
	all := []Location{
		{Name: "Kopi Klotok", Category: []string{"c"}},
		{Name: "Angkringan X", Category: []string{"c"}},
		{Name: "Kopi Liong", Category: []string{"c"}},
	}
	for _, search := range []string{"kopi", "KOPI", "Kopi"} {
		got := names(ApplyFilters(all, FilterState{Search: search}, nil))
		if want := []string{"Kopi Klotok", "Kopi Liong"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("search %q: got %v; want %v", search, got, want)
		}
	}
}

// at returns a location due north of user at roughly km kilometres.
func at(name string, user Coords, km float64) Location {
	return Location{Name: name, Lat: user.Lat + km/111.195, Lng: user.Lng, Category: []string{"c"}}
}

func TestApplyFiltersSortNearest(t *testing.T) {
	user := Coords{Lat: -7.8, Lng: 110.4}
	all := []Location{at("first", user, 2.1), at("second", user, 0.5), at("third", user, 4.0)}

	got := names(ApplyFilters(all, FilterState{SortNearest: true}, &user))
	if want := []string{"second", "first", "third"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v; want %v", got, want)
	}

	ranked := Rank(all, FilterState{SortNearest: true}, &user)
	for i, want := range []float64{0.5, 2.1, 4.0} {
		if ranked[i].DistanceKm == nil {
			t.Fatalf("ranked[%d] has no distance", i)
		}
		if math.Abs(*ranked[i].DistanceKm-want) > 0.01 {
			t.Fatalf("ranked[%d] distance = %f; want %f", i, *ranked[i].DistanceKm, want)
		}
	}
}

func TestApplyFiltersSortWithoutCoords(t *testing.T) {
	user := Coords{Lat: -7.8, Lng: 110.4}
	all := []Location{at("first", user, 2.1), at("second", user, 0.5), at("third", user, 4.0)}

	got := names(ApplyFilters(all, FilterState{SortNearest: true}, nil))
	if want := []string{"first", "second", "third"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v; want %v", got, want)
	}
	for _, r := range Rank(all, FilterState{SortNearest: true}, nil) {
		if r.DistanceKm != nil {
			t.Fatalf("%s has a distance without user coords", r.Name)
		}
	}
}

func TestApplyFiltersSortStableTies(t *testing.T) {
	user := Coords{Lat: -7.8, Lng: 110.4}
	all := []Location{at("a", user, 1), at("b", user, 1), at("c", user, 0.2), at("d", user, 1)}

	got := names(ApplyFilters(all, FilterState{SortNearest: true}, &user))
	if want := []string{"c", "a", "b", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v; want %v", got, want)
	}
}

func TestApplyFiltersOrderPreservingAndIdempotent(t *testing.T) {
	all := fixture()
	f := FilterState{AC: true}

	first := ApplyFilters(all, f, nil)
	second := ApplyFilters(all, f, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two runs differ: %v vs %v", names(first), names(second))
	}

	index := map[string]int{}
	for i, l := range all {
		index[l.ID] = i
	}
	for i := 1; i < len(first); i++ {
		if index[first[i-1].ID] > index[first[i].ID] {
			t.Fatalf("filter reordered %s before %s", first[i-1].Name, first[i].Name)
		}
	}
}

func TestApplyFiltersCommutativeStages(t *testing.T) {
	all := fixture()
	combined := names(ApplyFilters(all, FilterState{Category: "traditional", AC: true}, nil))

	catThenAC := names(ApplyFilters(ApplyFilters(all, FilterState{Category: "traditional"}, nil), FilterState{AC: true}, nil))
	acThenCat := names(ApplyFilters(ApplyFilters(all, FilterState{AC: true}, nil), FilterState{Category: "traditional"}, nil))

	if !reflect.DeepEqual(combined, catThenAC) || !reflect.DeepEqual(combined, acThenCat) {
		t.Fatalf("combined %v, category→ac %v, ac→category %v", combined, catThenAC, acThenCat)
	}
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	user := Coords{Lat: -7.8, Lng: 110.4}
	all := []Location{at("first", user, 2.1), at("second", user, 0.5)}
	ApplyFilters(all, FilterState{SortNearest: true}, &user)
	if got := names(all); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("input reordered to %v", got)
	}
}

func TestApplyFiltersEmpty(t *testing.T) {
	got := ApplyFilters(nil, FilterState{Tubruk: true, SortNearest: true}, &Coords{})
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v; want empty non-nil slice", got)
	}
}
