package common

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/projectdiscovery/peerscan/pkg/peerdiscovery/address"
	"go4.org/netipx"
)

// ErrNoAddressMatchesFilter is returned when a filter rejects every
// interface address.
var ErrNoAddressMatchesFilter = errors.New("no address matches filter")

// Predicate selects interface addresses.
type Predicate func(address.IPv4) bool

// Filter keeps the addresses accepted by pred. A nil predicate keeps
// everything.
func Filter(addrs []address.IPv4, pred Predicate) ([]address.IPv4, error) {
	if pred == nil {
		return addrs, nil
	}
	var kept []address.IPv4
	for _, a := range addrs {
		if pred(a) {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %d addresses rejected", ErrNoAddressMatchesFilter, len(addrs))
	}
	return kept, nil
}

// IsPrivate accepts RFC 1918 addresses.
func IsPrivate(a address.IPv4) bool {
	return a.Addr().IsPrivate()
}

// InPrefixes accepts addresses inside any of the prefixes.
func InPrefixes(prefixes ...netip.Prefix) (Predicate, error) {
	var b netipx.IPSetBuilder
	for _, p := range prefixes {
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid prefix %s", p)
		}
		b.AddPrefix(p.Masked())
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("could not build prefix set: %w", err)
	}
	return func(a address.IPv4) bool {
		return set.Contains(a.Addr())
	}, nil
}

// ParsePrefixes parses CIDR strings for InPrefixes.
func ParsePrefixes(cidrs []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(a address.IPv4) bool { return !pred(a) }
}

// All accepts addresses accepted by every non-nil predicate.
func All(preds ...Predicate) Predicate {
	return func(a address.IPv4) bool {
		for _, p := range preds {
			if p != nil && !p(a) {
				return false
			}
		}
		return true
	}
}
