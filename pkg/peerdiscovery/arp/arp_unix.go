//go:build !windows

package arp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	osutils "github.com/projectdiscovery/utils/os"
)

func readLocalARPTable(ctx context.Context) ([]Neighbor, error) {
	if osutils.IsLinux() {
		f, err := os.Open("/proc/net/arp")
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		return parseLinuxTable(f)
	}

	output, err := exec.CommandContext(ctx, "arp", "-an").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -an: %w", err)
	}
	return parseBSDTable(bytes.NewReader(output))
}
