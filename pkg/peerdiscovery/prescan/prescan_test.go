package prescan

import (
	"testing"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
)

func mustCIDR(t *testing.T, cidr string) address.IPv4 {
	t.Helper()
	a, err := address.ParseCIDR(cidr)
	if err != nil {
		t.Fatalf("ParseCIDR(%s) failed: %v", cidr, err)
	}
	return a
}

func lastOctets(addrs []address.IPv4) map[byte]bool {
	seen := make(map[byte]bool, len(addrs))
	for _, a := range addrs {
		seen[a.Octets()[3]] = true
	}
	return seen
}

func TestSelectAddresses(t *testing.T) {
	tests := []struct {
		name      string
		cidr      string
		ratio     float64
		wantCount int
		validate  func(t *testing.T, addrs []address.IPv4)
	}{
		{
			name:      "25% of /24 network",
			cidr:      "192.168.1.0/24",
			ratio:     0.25,
			wantCount: 64, // 254 usable * 0.25 = 63.5, rounded up to 64
			validate: func(t *testing.T, addrs []address.IPv4) {
				seen := lastOctets(addrs)
				if !seen[1] {
					t.Error("Expected to include .1 (router)")
				}
				if !seen[254] {
					t.Error("Expected to include .254 (gateway)")
				}
			},
		},
		{
			name:      "50% of /24 network",
			cidr:      "192.168.1.0/24",
			ratio:     0.5,
			wantCount: 127,
		},
		{
			name:      "100% of /24 network",
			cidr:      "192.168.1.0/24",
			ratio:     1.0,
			wantCount: 254,
		},
		{
			name:      "0% ratio",
			cidr:      "192.168.1.0/24",
			ratio:     0.0,
			wantCount: 0,
		},
		{
			name:      "Interface address instead of network",
			cidr:      "192.168.1.77/24",
			ratio:     1.0,
			wantCount: 254,
		},
		{
			name:      "Single host /32",
			cidr:      "192.168.1.1/32",
			ratio:     0.5,
			wantCount: 0, // /32 has no usable addresses
		},
		{
			name:      "Point to point /31",
			cidr:      "192.168.1.0/31",
			ratio:     1,
			wantCount: 0,
		},
		{
			name:      "Negative ratio clamped to 0",
			cidr:      "192.168.1.0/24",
			ratio:     -0.1,
			wantCount: 0,
		},
		{
			name:      "Ratio > 1 clamped to 1",
			cidr:      "192.168.1.0/24",
			ratio:     1.5,
			wantCount: 254,
		},
		{
			name:      "Small /30 network",
			cidr:      "192.168.1.0/30",
			ratio:     0.5,
			wantCount: 1, // 2 usable * 0.5 = 1
		},
		{
			name:      "Very small ratio still returns one",
			cidr:      "192.168.1.0/24",
			ratio:     0.001,
			wantCount: 1,
			validate: func(t *testing.T, addrs []address.IPv4) {
				if addrs[0].Octets()[3] != 1 {
					t.Errorf("Expected .1 first, got %s", addrs[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addrs, err := SelectAddresses(mustCIDR(t, tt.cidr), tt.ratio)
			if err != nil {
				t.Fatalf("SelectAddresses() error = %v", err)
			}
			if len(addrs) != tt.wantCount {
				t.Errorf("SelectAddresses() count = %d, want %d", len(addrs), tt.wantCount)
			}
			if tt.validate != nil {
				tt.validate(t, addrs)
			}
		})
	}
}

func TestSelectAddressesWithCount(t *testing.T) {
	subnet := mustCIDR(t, "192.168.1.0/24")

	addrs, err := SelectAddressesWithCount(subnet, 50)
	if err != nil {
		t.Fatalf("SelectAddressesWithCount() error = %v", err)
	}
	if len(addrs) != 50 {
		t.Errorf("Expected 50 addresses, got %d", len(addrs))
	}
	seen := lastOctets(addrs)
	if !seen[1] || !seen[254] {
		t.Error("Expected to include .1 and .254")
	}

	addrs, err = SelectAddressesWithCount(subnet, 0)
	if err != nil || len(addrs) != 0 {
		t.Errorf("count 0 = %v, %v", addrs, err)
	}

	addrs, err = SelectAddressesWithCount(mustCIDR(t, "10.0.0.0/29"), 100)
	if err != nil || len(addrs) != 6 {
		t.Errorf("count above size = %d, %v", len(addrs), err)
	}

	for _, a := range addrs {
		if a.Bits() != 29 {
			t.Errorf("address %s lost its prefix length", a)
		}
	}
}

func TestCalculatePriority(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want int
	}{
		{name: "Infrastructure .1", ip: "192.168.1.1", want: PriorityTier1},
		{name: "Infrastructure .254", ip: "192.168.1.254", want: PriorityTier1},
		{name: "Reserved .2", ip: "192.168.1.2", want: PriorityTier2},
		{name: "Reserved .5", ip: "192.168.1.5", want: PriorityTier2},
		{name: "Reserved .250", ip: "192.168.1.250", want: PriorityTier2},
		{name: "Early DHCP .6", ip: "192.168.1.6", want: PriorityTier3},
		{name: "Early DHCP .10", ip: "192.168.1.10", want: PriorityTier3},
		{name: "DHCP peak .50", ip: "192.168.1.50", want: PriorityTier4},
		{name: "DHCP peak .100", ip: "192.168.1.100", want: PriorityTier4},
		{name: "DHCP peak .150", ip: "192.168.1.150", want: PriorityTier4},
		{name: "DHCP range .51", ip: "192.168.1.51", want: PriorityTier5},
		{name: "DHCP range .200", ip: "192.168.1.200", want: PriorityTier5},
		{name: "Long-tail .25", ip: "192.168.1.25", want: PriorityTier6},
		{name: "Long-tail .240", ip: "192.168.1.240", want: PriorityTier6},
		{name: "Network address .0", ip: "192.168.1.0", want: PriorityTier7},
		{name: "Broadcast address .255", ip: "192.168.1.255", want: PriorityTier7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePriority(address.MustParse(tt.ip, 24))
			if got != tt.want {
				t.Errorf("CalculatePriority() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculatePriorityLargerSubnet(t *testing.T) {
	// .0 and .255 are ordinary hosts inside a /16
	if got := CalculatePriority(address.MustParse("10.0.3.0", 16)); got != PriorityTier6 {
		t.Errorf("10.0.3.0/16 priority = %d, want %d", got, PriorityTier6)
	}
	if got := CalculatePriority(address.MustParse("10.0.0.0", 16)); got != PriorityTier7 {
		t.Errorf("10.0.0.0/16 priority = %d, want %d", got, PriorityTier7)
	}
	if got := CalculatePriority(address.MustParse("10.0.3.1", 16)); got != PriorityTier1 {
		t.Errorf("10.0.3.1/16 priority = %d, want %d", got, PriorityTier1)
	}
}

func TestPriorityOrdering(t *testing.T) {
	addrs, err := SelectAddresses(mustCIDR(t, "192.168.1.0/24"), 0.5)
	if err != nil {
		t.Fatalf("SelectAddresses() error = %v", err)
	}
	for i := 1; i < len(addrs); i++ {
		prev, cur := CalculatePriority(addrs[i-1]), CalculatePriority(addrs[i])
		if cur > prev {
			t.Errorf("addresses not in priority order: priority[%d]=%d > priority[%d]=%d", i, cur, i-1, prev)
		}
		if cur == prev && !addrs[i-1].Less(addrs[i]) {
			t.Errorf("tie at %d not broken by address order: %s then %s", i, addrs[i-1], addrs[i])
		}
	}
}

func TestOrder(t *testing.T) {
	candidates := []address.IPv4{
		address.MustParse("192.168.1.30", 24),
		address.MustParse("192.168.1.7", 24),
		address.MustParse("192.168.1.254", 24),
		address.MustParse("192.168.1.100", 24),
		address.MustParse("192.168.1.1", 24),
	}
	Order(candidates)

	want := []string{"192.168.1.1/24", "192.168.1.254/24", "192.168.1.7/24", "192.168.1.100/24", "192.168.1.30/24"}
	for i := range want {
		if candidates[i].String() != want[i] {
			t.Errorf("Order()[%d] = %s, want %s", i, candidates[i], want[i])
		}
	}
}

func TestPatternsIsACopy(t *testing.T) {
	p := Patterns()
	p[0].Priority = -1
	if Patterns()[0].Priority == -1 {
		t.Error("Patterns() exposes internal table")
	}
}
