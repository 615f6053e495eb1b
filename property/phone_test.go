package property

import (
	"strings"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"081234567890", "6281234567890"},
		{"6281234567890", "6281234567890"},
		{"+62 812-3456-7890", "6281234567890"},
		{"0812 3456 7890", "6281234567890"},
		{"81234567890", "6281234567890"},
		{"", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("081234567890", "Budi", "Rumah Minimalis Prabumulih")
	if !strings.HasPrefix(link, "https://wa.me/6281234567890?text=") {
		t.Fatalf("unexpected link: %q", link)
	}
	if !strings.Contains(link, "Budi") {
		t.Fatalf("expected seller name in message, got %q", link)
	}
	if strings.Contains(link, " ") {
		t.Fatalf("message must be escaped, got %q", link)
	}

	if link := WhatsAppLink("", "Budi", "Rumah"); link != "" {
		t.Fatalf("expected empty link for empty phone, got %q", link)
	}
}

func TestParseCondition(t *testing.T) {
	if got := ParseCondition("baik"); got != ConditionGood {
		t.Fatalf("expected ConditionGood, got %q", got)
	}
	if got := ParseCondition("BARU"); got != ConditionNew {
		t.Fatalf("expected case-insensitive parse, got %q", got)
	}
	if got := ParseCondition("mewah"); got != ConditionUnknown {
		t.Fatalf("expected ConditionUnknown, got %q", got)
	}
	if ConditionUnknown.Code() != 0 {
		t.Fatalf("unknown condition must encode 0, got %f", ConditionUnknown.Code())
	}
	if ConditionNew.Code() != 4 {
		t.Fatalf("expected code 4, got %f", ConditionNew.Code())
	}
}

func TestZoneTier(t *testing.T) {
	if ZoneCityCenter.Tier() <= ZoneCambai.Tier() {
		t.Fatal("city center must outrank outskirts")
	}
	if ZoneUnknown.Tier() != 0 {
		t.Fatalf("unknown zone tier must be 0, got %f", ZoneUnknown.Tier())
	}
}
