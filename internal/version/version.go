// ABOUTME: Version and product identification constants
// ABOUTME: Reported in logs, remote hello messages and mDNS TXT records
package version

const (
	// Version is the soundboard release
	Version = "0.3.0"

	// Product is the name shown to remote clients
	Product = "Sendspin Soundboard"

	// Manufacturer identifies who builds it
	Manufacturer = "Sendspin"
)

// String returns "Product Version"
func String() string {
	return Product + " " + Version
}
