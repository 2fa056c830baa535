package vetting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// ErrNXDomain is returned by a Resolver when the queried name does not exist.
// For a DNS blocklist that means "not listed".
var ErrNXDomain = errors.New("dns: no such domain")

// ErrNoAnswer is returned when the name exists but carries no A record.
var ErrNoAnswer = errors.New("dns: no A records in answer")

const defaultNameserver = "8.8.8.8:53"

// Resolver looks up IPv4 A records.
//
// Implementations return ErrNXDomain (possibly wrapped) for a definitive
// non-existent name. Every other error is treated as inconclusive.
type Resolver interface {
	LookupA(ctx context.Context, name string) ([]net.IP, error)
}

// DNSResolver queries a single nameserver directly over UDP.
type DNSResolver struct {
	nameserver string
	client     *dns.Client
}

// NewDNSResolver builds a resolver against nameserver ("host:port"). An empty
// nameserver is read from /etc/resolv.conf, falling back to Google public DNS.
func NewDNSResolver(nameserver string, timeout time.Duration) *DNSResolver {
	if nameserver == "" {
		nameserver = systemNameserver()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &DNSResolver{
		nameserver: nameserver,
		client: &dns.Client{
			Net:          "udp",
			Timeout:      timeout,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

// Nameserver returns the address queries are sent to.
func (r *DNSResolver) Nameserver() string {
	return r.nameserver
}

// LookupA implements Resolver.
func (r *DNSResolver) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.nameserver)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	return answerIPs(name, resp)
}

// answerIPs maps a DNS response onto the Resolver contract.
func answerIPs(name string, resp *dns.Msg) ([]net.IP, error) {
	if resp == nil {
		return nil, fmt.Errorf("query %s: empty response", name)
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fmt.Errorf("query %s: %w", name, ErrNXDomain)
	default:
		return nil, fmt.Errorf("query %s: rcode %s", name, dns.RcodeToString[resp.Rcode])
	}

	var ips []net.IP
	for _, ans := range resp.Answer {
		if rr, ok := ans.(*dns.A); ok {
			ips = append(ips, rr.A)
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("query %s: %w", name, ErrNoAnswer)
	}
	return ips, nil
}

func systemNameserver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return defaultNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

// SystemResolver goes through the Go resolver, optionally pinned to one
// nameserver to avoid cloud DNS rewriting blocklist answers.
type SystemResolver struct {
	resolver *net.Resolver
}

// NewSystemResolver returns a resolver over net.Resolver. When nameserver is
// non-empty all queries are dialed to it over UDP.
func NewSystemResolver(nameserver string, timeout time.Duration) *SystemResolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	res := &net.Resolver{PreferGo: true}
	if nameserver != "" {
		res.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, "udp", nameserver)
		}
	}
	return &SystemResolver{resolver: res}
}

// LookupA implements Resolver.
func (r *SystemResolver) LookupA(ctx context.Context, name string) ([]net.IP, error) {
	ips, err := r.resolver.LookupIP(ctx, "ip4", name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, fmt.Errorf("query %s: %w", name, ErrNXDomain)
		}
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("query %s: %w", name, ErrNoAnswer)
	}
	return ips, nil
}
