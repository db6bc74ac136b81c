// ABOUTME: mDNS service discovery for soundboards
// ABOUTME: Advertises the remote trigger API and browses for other soundboards
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/Sendspin/soundboard-go/internal/version"
	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the DNS-SD type soundboards advertise
	ServiceType = "_soundboard._tcp"

	// Path is the websocket endpoint of the remote trigger API
	Path = "/soundboard"

	browseTimeout = 3 * time.Second
)

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	found   chan *Soundboard
	servers []*mdns.Server
}

// Soundboard describes a discovered soundboard
type Soundboard struct {
	Name    string
	Host    string
	Port    int
	Path    string
	Version string
}

// Addr returns host:port
func (s *Soundboard) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// URL returns the websocket URL of the remote trigger API
func (s *Soundboard) URL() string {
	return "ws://" + s.Addr() + s.Path
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
		found:  make(chan *Soundboard, 10),
	}
}

// txtRecords are published alongside the service
func txtRecords() []string {
	return []string{
		"path=" + Path,
		"version=" + version.Version,
		"product=" + version.Product,
	}
}

// Advertise publishes this soundboard via mDNS until Stop is called
func (m *Manager) Advertise() error {
	if m.config.Port <= 0 {
		return fmt.Errorf("invalid port %d", m.config.Port)
	}

	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}
	m.servers = append(m.servers, server)

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for soundboards until Stop is called
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				sb := fromEntry(entry)
				if sb == nil || sb.Name == m.config.ServiceName {
					continue
				}

				select {
				case m.found <- sb:
				case <-m.ctx.Done():
				}
			}
		}()

		if err := mdns.Query(queryParams(entries)); err != nil {
			log.Printf("Warning: mDNS query failed: %v", err)
		}
		close(entries)
		<-done
	}
}

// Soundboards returns the channel of soundboards found by Browse
func (m *Manager) Soundboards() <-chan *Soundboard {
	return m.found
}

// Stop shuts down advertisement and browsing
func (m *Manager) Stop() {
	m.cancel()
}

// Lookup runs a single query and returns every distinct soundboard that answered
func Lookup(timeout time.Duration) ([]*Soundboard, error) {
	if timeout <= 0 {
		timeout = browseTimeout
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	results := make(chan []*Soundboard, 1)

	go func() {
		seen := make(map[string]bool)
		var found []*Soundboard
		for entry := range entries {
			sb := fromEntry(entry)
			if sb == nil || seen[sb.Name] {
				continue
			}
			seen[sb.Name] = true
			found = append(found, sb)
		}
		results <- found
	}()

	params := queryParams(entries)
	params.Timeout = timeout
	err := mdns.Query(params)
	close(entries)
	found := <-results

	if err != nil {
		return found, fmt.Errorf("mDNS query failed: %w", err)
	}
	return found, nil
}

func queryParams(entries chan<- *mdns.ServiceEntry) *mdns.QueryParam {
	return &mdns.QueryParam{
		Service:     ServiceType,
		Domain:      "local",
		Timeout:     browseTimeout,
		Entries:     entries,
		DisableIPv6: true,
	}
}

// fromEntry converts a service entry; entries for other service types yield nil
func fromEntry(entry *mdns.ServiceEntry) *Soundboard {
	if entry == nil || !strings.Contains(entry.Name, ServiceType) {
		return nil
	}

	sb := &Soundboard{
		Name: instanceName(entry.Name),
		Host: strings.TrimSuffix(entry.Host, "."),
		Port: entry.Port,
		Path: Path,
	}
	if entry.AddrV4 != nil {
		sb.Host = entry.AddrV4.String()
	}

	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "path":
			sb.Path = value
		case "version":
			sb.Version = value
		}
	}
	return sb
}

// instanceName strips the service type and domain from a full instance name
func instanceName(full string) string {
	if i := strings.Index(full, "."+ServiceType); i >= 0 {
		return strings.ReplaceAll(full[:i], `\ `, " ")
	}
	return full
}

// getLocalIPs returns non-loopback IPv4 addresses of interfaces that are up
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
