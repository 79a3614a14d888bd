package wled

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeTimeout bounds each discovery probe.
const ProbeTimeout = 500 * time.Millisecond

// maxProbes is the number of hosts probed concurrently.
const maxProbes = 50

// DiscoveredDevice represents a found WLED controller.
type DiscoveredDevice struct {
	Name    string
	IP      string
	Version string
	LEDs    int
}

// ProgressFunc is called during scanning to report progress.
type ProgressFunc func(current, total int)

// ScanForDevices scans the local /24 subnet for WLED controllers.
func ScanForDevices(ctx context.Context, onProgress ProgressFunc) ([]DiscoveredDevice, error) {
	subnet, err := getLocalSubnet()
	if err != nil {
		return nil, err
	}
	return scanSubnet(ctx, subnet, DefaultPort, onProgress)
}

func scanSubnet(ctx context.Context, subnet string, port int, onProgress ProgressFunc) ([]DiscoveredDevice, error) {
	const total = 254

	var (
		mu      sync.Mutex
		devices []DiscoveredDevice
		done    int
	)

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(maxProbes)

	for i := 1; i <= total; i++ {
		ip := fmt.Sprintf("%s.%d", subnet, i)
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			device := probeWLED(ctx, ip, port)

			mu.Lock()
			defer mu.Unlock()

			if device != nil {
				devices = append(devices, *device)
			}
			done++
			if onProgress != nil {
				onProgress(done, total)
			}
			return nil
		})
	}

	err := errg.Wait()
	return devices, err
}

// getLocalSubnet returns the local subnet (e.g., "192.168.1").
func getLocalSubnet() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("failed to get network interfaces: %w", err)
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}

			ip := ipNet.IP.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}

			return fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2]), nil
		}
	}

	return "", fmt.Errorf("could not determine local network")
}

// probeWLED checks if an IP hosts a WLED controller.
func probeWLED(ctx context.Context, ip string, port int) *DiscoveredDevice {
	client := NewClientWithPort(ip, port)
	client.HTTPClient.Timeout = ProbeTimeout

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	info, err := client.GetInfo(probeCtx)
	if err != nil {
		return nil
	}

	return &DiscoveredDevice{
		Name:    info.Name,
		IP:      ip,
		Version: info.Version,
		LEDs:    info.LEDs.Count,
	}
}
