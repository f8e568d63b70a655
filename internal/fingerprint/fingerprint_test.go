package fingerprint

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestKnownDigests(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{SHA256, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{SHA3_256, "3338be694f50c5f338814986cdf0686453a888b84f424d792af4b9202398f392"},
	}
	for _, tc := range cases {
		s, err := Lookup(tc.name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.name, err)
		}
		if got := s.Sum([]byte("hello")); got != tc.want {
			t.Fatalf("%s(hello) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestLookupAliasesAndErrors(t *testing.T) {
	s, err := Lookup(" SHA3 ")
	if err != nil || s.Name() != SHA3_256 {
		t.Fatalf("alias lookup failed: %v %v", s, err)
	}
	if _, err := Lookup("md5"); err == nil {
		t.Fatal("expected unknown strategy error")
	}
}

func TestFamiliesDiverge(t *testing.T) {
	in := []byte("Awaken Stars: Transmission Sequence")
	seen := map[string]string{}
	for _, name := range Names() {
		sum := MustLookup(name).Sum(in)
		if len(sum) != 64 {
			t.Fatalf("%s digest length = %d", name, len(sum))
		}
		if !IsHex(sum) {
			t.Fatalf("%s digest not hex: %s", name, sum)
		}
		if other, ok := seen[sum]; ok {
			t.Fatalf("%s and %s collide", name, other)
		}
		seen[sum] = name
	}
}

func TestIsHex(t *testing.T) {
	if IsHex("") || IsHex("abc") || IsHex("RESURRECTED") || IsHex("ABCD") {
		t.Fatal("IsHex accepted invalid value")
	}
	if !IsHex("00ff") {
		t.Fatal("IsHex rejected valid value")
	}
}

func TestDeterminismProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("identical input yields identical digest", prop.ForAll(
		func(content string) bool {
			for _, name := range Names() {
				s := MustLookup(name)
				if s.Sum([]byte(content)) != s.Sum([]byte(content)) {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
