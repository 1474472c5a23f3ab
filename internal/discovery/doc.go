// Package discovery provides mDNS-based discovery of Denon and Marantz
// network AV receivers.
//
// This package implements multicast DNS (mDNS) service discovery to
// automatically locate HEOS-capable receivers on the local network. These
// receivers advertise themselves using the "_heos-audio._tcp" service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements from HEOS-capable receivers
//  3. Extracts the model designation from TXT records and instance names
//  4. Collects receiver information (name, IP, MAC, TXT metadata)
//  5. Returns a list of discovered receivers after the timeout period
//
// # Usage Example
//
//	// Discover receivers with 10-second timeout
//	receivers, err := discovery.ScanForReceivers(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered receivers
//	for _, rc := range receivers {
//	    fmt.Printf("Found: %s at %s (MAC: %s)\n",
//	        rc.Name, rc.ControlAddress(), rc.MAC)
//	}
//
// # Receiver Information
//
// Each discovered receiver includes:
//   - Name: mDNS instance name (e.g., "Denon AVR-X4500H")
//   - Model: model designation extracted from TXT records or the name
//   - IP: IPv4 address
//   - Port: HTTP port of the AppCommand control API (8080 on HEOS firmware)
//   - MAC: MAC address from the "mac" or "networkid" TXT record
//
// Pre-HEOS receivers (roughly before 2016) do not advertise any mDNS
// service and must be configured by IP address instead.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Receivers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
