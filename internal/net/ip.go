package net

import (
	"fmt"
	"net"
	"strconv"

	"signpad/internal/logging"
)

// ShareLink returns the websocket URL pads on the LAN should dial to reach a
// server listening on port.
func ShareLink(port int) string {
	return shareLink(lanIP(), port)
}

func shareLink(ip net.IP, port int) string {
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(ip.String(), strconv.Itoa(port)), PadPath)
}

// lanIP picks the IPv4 address LAN pads can reach: the source address of the
// default route, else the first private address on an interface that is up.
func lanIP() net.IP {
	// UDP dial only resolves the route; nothing is sent.
	if conn, err := net.Dial("udp4", "192.0.2.1:9"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsLoopback() {
			return addr.IP
		}
	}

	ifaces, err := net.Interfaces()
	if err == nil {
		for _, ifc := range ifaces {
			if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
				continue
			}
			addrs, err := ifc.Addrs()
			if err != nil {
				continue
			}
			if ip := privateIPv4(addrs); ip != nil {
				return ip
			}
		}
	}
	logging.Logger().Warn("[pad] no LAN address found, share link is loopback only")
	return net.IPv4(127, 0, 0, 1)
}

func privateIPv4(addrs []net.Addr) net.IP {
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipnet.IP.To4(); ip != nil && ip.IsPrivate() {
			return ip
		}
	}
	return nil
}
