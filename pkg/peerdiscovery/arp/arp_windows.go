//go:build windows

package arp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

func readLocalARPTable(ctx context.Context) ([]Neighbor, error) {
	output, err := exec.CommandContext(ctx, "arp", "-a").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -a: %w", err)
	}
	return parseWindowsTable(bytes.NewReader(output))
}
