package wapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"gapscan/errors"
)

// MaxSessions caps the reusable HTTP session set. More sessions than
// this stop helping against a single grid master.
const MaxSessions = 10

// leaseFields are the lease attributes requested for every fetch.
const leaseFields = "address,binding_state,hardware,cltt,ends,served_by,client_hostname"

// Options tune the lease fetch pool. Zero values take the defaults.
type Options struct {
	Sessions int     // HTTP sessions to round-robin over (default 1, max MaxSessions)
	Threads  int     // concurrent lease fetches (default 5)
	RateRPS  float64 // request rate ceiling (default 50/s)
}

func (o Options) withDefaults() Options {
	if o.Sessions <= 0 {
		o.Sessions = 1
	}
	if o.Sessions > MaxSessions {
		o.Sessions = MaxSessions
	}
	if o.Threads <= 0 {
		o.Threads = 5
	}
	if o.RateRPS <= 0 {
		o.RateRPS = 50
	}
	return o
}

// Address is one entry of the /ipv4address listing for a network.
type Address struct {
	IPAddress string   `json:"ip_address"`
	Status    string   `json:"status"`
	Usage     []string `json:"usage"`
	Objects   []string `json:"objects"`
}

// Lease is the subset of lease attributes named by leaseFields.
type Lease struct {
	Ref            string `json:"_ref"`
	Address        string `json:"address"`
	BindingState   string `json:"binding_state"`
	Hardware       string `json:"hardware"`
	CLTT           int64  `json:"cltt"`
	Ends           int64  `json:"ends"`
	ServedBy       string `json:"served_by"`
	ClientHostname string `json:"client_hostname"`
}

// Client talks to one grid master over a fixed set of reusable HTTP
// sessions. Safe for concurrent use.
type Client struct {
	cfg      Config
	opts     Options
	base     string
	sessions []*http.Client
	next     atomic.Uint64
	limiter  *rate.Limiter
	log      *zap.SugaredLogger
}

// NewClient builds a client from a loaded gm.ini configuration. The
// grid master address may carry an explicit scheme; https is assumed
// otherwise.
func NewClient(cfg Config, opts Options, log *zap.SugaredLogger) *Client {
	opts = opts.withDefaults()

	host := cfg.GridMaster
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	// Each session gets its own transport, so each owns its own
	// connection pool; a shared transport would collapse the set into
	// one pool.
	sessions := make([]*http.Client, opts.Sessions)
	for i := range sessions {
		transport := &http.Transport{}
		if !cfg.ValidCert {
			// Self-signed grid master certificates are the common case.
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		sessions[i] = &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		}
	}

	return &Client{
		cfg:      cfg,
		opts:     opts,
		base:     fmt.Sprintf("%s/wapi/%s", host, cfg.APIVersion),
		sessions: sessions,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateRPS), 1),
		log:      log,
	}
}

// session returns the next HTTP session round-robin.
func (c *Client) session() *http.Client {
	n := c.next.Add(1)
	return c.sessions[int(n-1)%len(c.sessions)]
}

// get performs one rate-limited WAPI GET and decodes the JSON body
// into out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "building request %q", url)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.User, c.cfg.Pass)

	resp, err := c.session().Do(req)
	if err != nil {
		return errors.Wrapf(err, "wapi get %q", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf("wapi get %q: HTTP %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding response of %q", url)
	}
	return nil
}

// GetNetworkLeases lists the network's addresses, selects the ones
// holding an active DHCP lease object, and fetches every lease across
// the worker pool. A failed lease fetch is logged and skipped without
// cancelling its siblings; only context cancellation aborts the pool.
// Results are collected in completion order.
func (c *Client) GetNetworkLeases(ctx context.Context, network, view string) ([]Lease, error) {
	if view == "" {
		view = "default"
	}

	c.log.Infow("retrieving network", "network", network, "view", view)
	var addrs []Address
	url := fmt.Sprintf("%s/ipv4address?network=%s&network_view=%s", c.base, network, view)
	if err := c.get(ctx, url, &addrs); err != nil {
		return nil, errors.Wrapf(err, "network %s", network)
	}

	refs := leaseRefs(addrs)
	c.log.Infow("retrieving leases", "count", len(refs))
	if len(refs) == 0 {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		leases []Lease
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Threads)
	for _, ref := range refs {
		g.Go(func() error {
			var lease Lease
			url := fmt.Sprintf("%s/%s?_return_fields=%s", c.base, ref, leaseFields)
			if err := c.get(ctx, url, &lease); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Warnw("lease fetch failed", "ref", ref, "error", err)
				return nil
			}
			mu.Lock()
			leases = append(leases, lease)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return leases, err
	}
	return leases, nil
}

// leaseRefs selects the lease object references of the used DHCP
// addresses, one per address.
func leaseRefs(addrs []Address) []string {
	var refs []string
	for _, addr := range addrs {
		if addr.Status != "USED" || !slices.Contains(addr.Usage, "DHCP") {
			continue
		}
		for _, obj := range addr.Objects {
			if strings.Contains(obj, "lease") {
				refs = append(refs, obj)
				break
			}
		}
	}
	return refs
}
