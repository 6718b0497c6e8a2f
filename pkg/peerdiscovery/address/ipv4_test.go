package address

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/projectdiscovery/mapcidr"
	"go4.org/netipx"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		bits    int
		want    string
		wantErr bool
	}{
		{name: "valid /24", text: "192.168.1.1", bits: 24, want: "192.168.1.1/24"},
		{name: "zero address", text: "0.0.0.0", bits: 0, want: "0.0.0.0/0"},
		{name: "all ones /32", text: "255.255.255.255", bits: 32, want: "255.255.255.255/32"},
		{name: "leading zeros", text: "010.001.000.009", bits: 8, want: "10.1.0.9/8"},
		{name: "trailing dot", text: "192.168.1.9.", bits: 24, wantErr: true},
		{name: "octet out of range", text: "500.1.1.1", bits: 24, wantErr: true},
		{name: "three octets", text: "192.168.1", bits: 24, wantErr: true},
		{name: "five octets", text: "1.2.3.4.5", bits: 24, wantErr: true},
		{name: "empty octet", text: "1..3.4", bits: 24, wantErr: true},
		{name: "four digit octet", text: "1.2.3.0004", bits: 24, wantErr: true},
		{name: "non digit", text: "1.2.3.a", bits: 24, wantErr: true},
		{name: "signed octet", text: "1.2.+3.4", bits: 24, wantErr: true},
		{name: "whitespace", text: " 1.2.3.4", bits: 24, wantErr: true},
		{name: "empty", text: "", bits: 24, wantErr: true},
		{name: "negative prefix", text: "1.2.3.4", bits: -1, wantErr: true},
		{name: "prefix too long", text: "1.2.3.4", bits: 33, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text, tt.bits)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q, %d) error = %v, wantErr %v", tt.text, tt.bits, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedAddress) {
					t.Errorf("Parse(%q) error = %v, want ErrMalformedAddress", tt.text, err)
				}
				if got != (IPv4{}) {
					t.Errorf("Parse(%q) returned partial value %s", tt.text, got)
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.text, got.String(), tt.want)
			}
		})
	}
}

func TestParseCIDR(t *testing.T) {
	a, err := ParseCIDR("10.0.0.7/16")
	if err != nil {
		t.Fatalf("ParseCIDR failed: %v", err)
	}
	if a != MustParse("10.0.0.7", 16) {
		t.Errorf("ParseCIDR = %s, want 10.0.0.7/16", a)
	}

	for _, text := range []string{"10.0.0.7", "10.0.0.7/", "10.0.0.7/x", "10.0.0.7/33", "10.0.0.7/-1", "10.0.0/8"} {
		if _, err := ParseCIDR(text); !errors.Is(err, ErrMalformedAddress) {
			t.Errorf("ParseCIDR(%q) error = %v, want ErrMalformedAddress", text, err)
		}
	}
}

func TestOrdering(t *testing.T) {
	addrs := []IPv4{
		MustParse("0.0.0.0", 24),
		MustParse("9.255.255.255", 24),
		MustParse("10.0.0.0", 24),
		MustParse("192.168.1.9", 24),
		MustParse("192.168.1.10", 24),
		MustParse("255.255.255.255", 24),
	}

	for i, a := range addrs {
		for j, b := range addrs {
			less, equal, greater := a.Compare(b) < 0, a == b, a.Compare(b) > 0
			count := 0
			for _, v := range []bool{less, equal, greater} {
				if v {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("%s vs %s: less=%v equal=%v greater=%v", a, b, less, equal, greater)
			}
			if want := i < j; less != want {
				t.Errorf("%s < %s = %v, want %v", a, b, less, want)
			}
			lessOrEqual := a.Compare(b) <= 0
			if lessOrEqual != (less || equal) {
				t.Errorf("%s <= %s inconsistent", a, b)
			}
		}
	}
}

func TestEqualityRequiresPrefix(t *testing.T) {
	a := MustParse("192.168.1.9", 24)
	b := MustParse("192.168.1.9", 16)
	if a.Compare(b) != 0 {
		t.Errorf("Compare across prefixes = %d, want 0", a.Compare(b))
	}
	if a.Equal(b) {
		t.Error("addresses with different prefixes must not be equal")
	}
	if !a.Equal(MustParse("192.168.1.9", 24)) {
		t.Error("identical addresses must be equal")
	}
}

func TestCompareTo(t *testing.T) {
	a := MustParse("192.168.1.9", 24)
	b := MustParse("192.168.1.10", 24)

	if got, err := a.CompareTo(b); err != nil || got != -1 {
		t.Errorf("CompareTo(IPv4) = %d, %v", got, err)
	}
	if got, err := b.CompareTo(&a); err != nil || got != 1 {
		t.Errorf("CompareTo(*IPv4) = %d, %v", got, err)
	}
	for _, other := range []any{"192.168.1.9/24", 42, nil, (*IPv4)(nil), netip.MustParseAddr("192.168.1.9")} {
		if _, err := a.CompareTo(other); !errors.Is(err, ErrIncomparableType) {
			t.Errorf("CompareTo(%T) error = %v, want ErrIncomparableType", other, err)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := MustParse("192.168.1.9", 24)
	if got := a.Add(2); got != MustParse("192.168.1.11", 24) {
		t.Errorf("Add(2) = %s", got)
	}
	if got := a.Add(2).Sub(2); got != a {
		t.Errorf("(a+2)-2 = %s, want %s", got, a)
	}
	if got := MustParse("192.168.1.255", 24).Add(1); got != MustParse("192.168.2.0", 24) {
		t.Errorf("Add across octet = %s", got)
	}
	if got := MustParse("255.255.255.255", 8).Add(1); got != MustParse("0.0.0.0", 8) {
		t.Errorf("Add wraps = %s", got)
	}
	if got := MustParse("0.0.0.0", 8).Sub(1); got != MustParse("255.255.255.255", 8) {
		t.Errorf("Sub wraps = %s", got)
	}
}

func TestRangeTo(t *testing.T) {
	from := MustParse("192.168.1.9", 24)
	to := MustParse("192.168.1.13", 24)
	want := []string{"192.168.1.9/24", "192.168.1.10/24", "192.168.1.11/24", "192.168.1.12/24", "192.168.1.13/24"}

	got := from.RangeTo(to)
	if len(got) != len(want) {
		t.Fatalf("RangeTo returned %d addresses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("RangeTo[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	reversed := to.RangeTo(from)
	for i := range want {
		if reversed[i].String() != want[len(want)-1-i] {
			t.Errorf("reversed[%d] = %s, want %s", i, reversed[i], want[len(want)-1-i])
		}
	}

	single := from.RangeTo(from)
	if len(single) != 1 || single[0] != from {
		t.Errorf("RangeTo(self) = %v", single)
	}
}

func TestIterStopsEarly(t *testing.T) {
	from := MustParse("10.0.0.1", 8)
	to := MustParse("10.255.255.254", 8)
	n := 0
	for range from.Iter(to) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d times, want 3", n)
	}
}

func TestNetworkBroadcast(t *testing.T) {
	tests := []struct {
		addr      string
		bits      int
		network   string
		broadcast string
	}{
		{"192.168.1.9", 24, "192.168.1.0/24", "192.168.1.255/24"},
		{"192.168.1.9", 29, "192.168.1.8/29", "192.168.1.15/29"},
		{"10.20.30.40", 8, "10.0.0.0/8", "10.255.255.255/8"},
		{"172.16.5.4", 12, "172.16.0.0/12", "172.31.255.255/12"},
		{"192.168.1.9", 32, "192.168.1.9/32", "192.168.1.9/32"},
		{"192.168.1.9", 31, "192.168.1.8/31", "192.168.1.9/31"},
		{"192.168.1.9", 0, "0.0.0.0/0", "255.255.255.255/0"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			a := MustParse(tt.addr, tt.bits)
			network, broadcast := Bounds(a)
			if network.String() != tt.network {
				t.Errorf("network = %s, want %s", network, tt.network)
			}
			if broadcast.String() != tt.broadcast {
				t.Errorf("broadcast = %s, want %s", broadcast, tt.broadcast)
			}

			r := netipx.RangeOfPrefix(a.Prefix())
			if r.From() != network.Addr() || r.To() != broadcast.Addr() {
				t.Errorf("netipx range %s disagrees with %s-%s", r, network, broadcast)
			}
		})
	}
}

func TestNetworkRangeMatchesMapcidr(t *testing.T) {
	for _, cidr := range []string{"192.168.1.0/29", "10.1.2.0/26", "172.16.3.4/30"} {
		t.Run(cidr, func(t *testing.T) {
			a, err := ParseCIDR(cidr)
			if err != nil {
				t.Fatalf("ParseCIDR(%s) failed: %v", cidr, err)
			}
			ips, err := mapcidr.IPAddresses(cidr)
			if err != nil {
				t.Fatalf("mapcidr.IPAddresses(%s) failed: %v", cidr, err)
			}
			got := a.Network().RangeTo(a.Broadcast())
			if len(got) != len(ips) {
				t.Fatalf("got %d addresses, mapcidr has %d", len(got), len(ips))
			}
			for i := range ips {
				if got[i].IP().String() != ips[i] {
					t.Errorf("address %d = %s, mapcidr has %s", i, got[i].IP(), ips[i])
				}
			}
		})
	}
}

func TestConversions(t *testing.T) {
	a := MustParse("192.168.1.9", 24)
	if a.IP().String() != "192.168.1.9" {
		t.Errorf("IP() = %s", a.IP())
	}
	if a.Prefix().String() != "192.168.1.0/24" {
		t.Errorf("Prefix() = %s", a.Prefix())
	}
	if a.HostPort(8080) != "192.168.1.9:8080" {
		t.Errorf("HostPort = %s", a.HostPort(8080))
	}
	back, err := FromIP(a.IP(), 24)
	if err != nil || back != a {
		t.Errorf("FromIP round trip = %s, %v", back, err)
	}
	if !a.Contains(MustParse("192.168.1.200", 24)) || a.Contains(MustParse("192.168.2.1", 24)) {
		t.Error("Contains mismatch")
	}
}

func TestFromAddr(t *testing.T) {
	a, err := FromAddr(netip.MustParseAddr("10.1.2.3"), 16)
	if err != nil || a.String() != "10.1.2.3/16" {
		t.Errorf("FromAddr = %s, %v", a, err)
	}
	mapped, err := FromAddr(netip.MustParseAddr("::ffff:10.1.2.3"), 16)
	if err != nil || mapped != a {
		t.Errorf("FromAddr(mapped) = %s, %v", mapped, err)
	}
	if _, err := FromAddr(netip.MustParseAddr("fe80::1"), 64); !errors.Is(err, ErrMalformedAddress) {
		t.Errorf("FromAddr(ipv6) error = %v", err)
	}
}
