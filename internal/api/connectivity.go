package api

import "net"

// InterfaceConnectivity reports the network reachable while at least one
// non-loopback interface is up. The answer is advisory: a positive result
// does not guarantee the API host itself is reachable, it only gates the
// obviously-offline case before a request is attempted.
type InterfaceConnectivity struct {
	interfaces func() ([]net.Interface, error)
}

func NewInterfaceConnectivity() *InterfaceConnectivity {
	return &InterfaceConnectivity{interfaces: net.Interfaces}
}

func (c *InterfaceConnectivity) Online() bool {
	ifaces, err := c.interfaces()
	if err != nil {
		// Interface enumeration failing says nothing about connectivity;
		// let the request attempt decide.
		return true
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}
