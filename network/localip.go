package network

import "net"

// ipProbeTarget is an RFC 5737 TEST-NET-1 address. A UDP "connect" sends
// no traffic but lets the kernel pick the preferred outbound interface,
// which is the address worth printing in the startup banner.
const ipProbeTarget = "192.0.2.1:80"

// LocalIP returns the machine's preferred outbound IPv4 address, falling
// back to the loopback address when no route exists.
func LocalIP() string {
	conn, err := net.Dial("udp4", ipProbeTarget)
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP != nil {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
