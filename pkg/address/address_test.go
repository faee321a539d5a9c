package address

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name   string
		parts  Parts
		want   string
		wantOK bool
	}{
		{name: "full", parts: Parts{City: "Austin", State: "TX", Zip: "78701"}, want: "Austin, TX 78701", wantOK: true},
		{name: "no zip", parts: Parts{City: "Austin", State: "TX"}, want: "Austin, TX", wantOK: true},
		{name: "missing state", parts: Parts{City: "Austin", Zip: "78701"}},
		{name: "missing city", parts: Parts{State: "TX", Zip: "78701"}},
		{name: "empty", parts: Parts{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compose(tt.parts)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("Compose(%+v) = (%q, %v), want (%q, %v)", tt.parts, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDecompose_WellFormed(t *testing.T) {
	got := Decompose("Austin, TX 78701")
	want := Parts{City: "Austin", State: "TX", Zip: "78701"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decompose mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompose_Degrades(t *testing.T) {
	for _, input := range []string{"", "   ", "Austin TX 78701"} {
		if got := Decompose(input); !got.IsZero() {
			t.Fatalf("Decompose(%q) = %+v, want empty parts", input, got)
		}
	}
}

func TestDecompose_CityWithCommaIsLossy(t *testing.T) {
	got := Decompose("Washington, D.C., DC 20001")
	want := Parts{City: "Washington", State: "D.C.,", Zip: "DC 20001"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lossy decompose changed (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []Parts{
		{City: "Austin", State: "TX", Zip: "78701"},
		{City: "San Francisco", State: "CA", Zip: "94105"},
		{City: "Boise", State: "ID", Zip: "83702"},
	}
	for _, in := range inputs {
		composed, ok := Compose(in)
		if !ok {
			t.Fatalf("compose %+v failed", in)
		}
		if diff := cmp.Diff(in, Decompose(composed)); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}
