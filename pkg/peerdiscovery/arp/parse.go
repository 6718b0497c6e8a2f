package arp

import (
	"bufio"
	"io"
	"net"
	"net/netip"
	"strings"
)

// parseLinuxTable parses /proc/net/arp:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:ff     *        eth0
func parseLinuxTable(r io.Reader) ([]Neighbor, error) {
	var neighbors []Neighbor
	scanner := bufio.NewScanner(r)

	// header
	if !scanner.Scan() {
		return neighbors, scanner.Err()
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		if n, ok := neighbor(fields[0], fields[3]); ok {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors, scanner.Err()
}

// parseBSDTable parses `arp -a` output of macOS and the BSDs:
//
//	? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]
func parseBSDTable(r io.Reader) ([]Neighbor, error) {
	var neighbors []Neighbor
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		open := strings.Index(line, "(")
		closing := strings.Index(line, ")")
		if open == -1 || closing <= open {
			continue
		}
		_, rest, ok := strings.Cut(line[closing:], " at ")
		if !ok {
			continue
		}
		mac, _, _ := strings.Cut(rest, " ")
		if n, ok := neighbor(line[open+1:closing], padMAC(mac)); ok {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors, scanner.Err()
}

// parseWindowsTable parses `arp -a` output on windows:
//
//	Interface: 192.168.1.100 --- 0xa
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
func parseWindowsTable(r io.Reader) ([]Neighbor, error) {
	var neighbors []Neighbor
	scanner := bufio.NewScanner(r)

	inTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Interface:"):
			inTable = false
			continue
		case strings.Contains(line, "Internet Address") && strings.Contains(line, "Physical Address"):
			inTable = true
			continue
		case !inTable:
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if n, ok := neighbor(fields[0], strings.ReplaceAll(fields[1], "-", ":")); ok {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors, scanner.Err()
}

// neighbor validates one entry. Incomplete, broadcast and multicast entries
// and non IPv4 addresses are rejected.
func neighbor(ipStr, macStr string) (Neighbor, bool) {
	addr, err := netip.ParseAddr(ipStr)
	if err != nil || !addr.Is4() || addr.IsMulticast() {
		return Neighbor{}, false
	}
	mac, err := net.ParseMAC(macStr)
	if err != nil {
		return Neighbor{}, false
	}
	switch mac.String() {
	case "00:00:00:00:00:00", "ff:ff:ff:ff:ff:ff":
		return Neighbor{}, false
	}
	return Neighbor{Addr: addr, MAC: mac}, true
}

// padMAC restores the leading zeros BSD arp drops, 0:1c:42:0:0:8 becomes
// 00:1c:42:00:00:08.
func padMAC(mac string) string {
	parts := strings.Split(mac, ":")
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, ":")
}
