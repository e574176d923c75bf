// Package imageproxy fetches Digimon artwork from the upstream host and
// keeps it in a disk cache with a TTL, serving stale copies when the
// upstream fails.
package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/digiguide/digiguide/internal/config"
)

var (
	ErrBadSource     = errors.New("invalid image source")
	ErrForbiddenHost = errors.New("image host not allowed")
	ErrUpstream      = errors.New("upstream fetch failed")
)

// Outcome says how a request was served.
type Outcome string

const (
	OutcomeHit         Outcome = "hit"
	OutcomeMiss        Outcome = "miss"
	OutcomeStale       Outcome = "stale"
	OutcomeRevalidated Outcome = "revalidated"
	OutcomeError       Outcome = "error"
)

// metaTTL bounds how long sidecars stay memoized in memory.
const metaTTL = 5 * time.Minute

// MaxWidth is the largest accepted w parameter.
const MaxWidth = 4096

// Entry is a cached image ready to serve.
type Entry struct {
	Meta
	Key  string
	Path string
}

// Proxy resolves, fetches and caches images.
type Proxy struct {
	cfg      config.ImagesConfig
	upstream *url.URL
	allowed  map[string]bool
	client   *http.Client
	limiter  *rate.Limiter
	disk     diskCache
	meta     *ttlcache.Cache[string, Meta]
	log      *zap.Logger
	now      func() time.Time
}

// New builds a proxy from cfg. Call Start to run the metadata janitor and
// Stop when done.
func New(cfg config.ImagesConfig, log *zap.Logger) (*Proxy, error) {
	up, err := url.Parse(cfg.Upstream)
	if err != nil || up.Host == "" {
		return nil, fmt.Errorf("images.upstream %q is not an absolute URL", cfg.Upstream)
	}

	allowed := map[string]bool{strings.ToLower(up.Hostname()): true}
	for _, h := range cfg.AllowedHosts {
		allowed[strings.ToLower(h)] = true
	}

	limit := rate.Inf
	burst := 1
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
		if b := int(cfg.RPS); b > burst {
			burst = b
		}
	}

	p := &Proxy{
		cfg:      cfg,
		upstream: up,
		allowed:  allowed,
		limiter:  rate.NewLimiter(limit, burst),
		disk:     diskCache{dir: cfg.CacheDir},
		meta: ttlcache.New(
			ttlcache.WithTTL[string, Meta](metaTTL),
		),
		log: log,
		now: time.Now,
	}
	p.client = &http.Client{CheckRedirect: p.checkRedirect}
	return p, nil
}

// maxRedirects matches net/http's default limit.
const maxRedirects = 10

// checkRedirect keeps every redirect hop on an allowed host.
func (p *Proxy) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !p.allowed[strings.ToLower(req.URL.Hostname())] {
		return fmt.Errorf("%w: redirect to %s", ErrForbiddenHost, req.URL.Host)
	}
	return nil
}

// Start runs the metadata cache janitor until Stop.
func (p *Proxy) Start() { go p.meta.Start() }

// Stop halts the janitor.
func (p *Proxy) Stop() { p.meta.Stop() }

// Resolve turns src into the upstream URL to fetch. Relative sources are
// resolved against the upstream; absolute ones must name an allowed host.
// A positive width is forwarded as the w query parameter.
func (p *Proxy) Resolve(src string, width int) (*url.URL, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty src", ErrBadSource)
	}
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSource, err)
	}

	if u.Scheme != "" || u.Host != "" {
		if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%w: scheme %q", ErrBadSource, u.Scheme)
		}
		if !p.allowed[strings.ToLower(u.Hostname())] {
			return nil, fmt.Errorf("%w: %s", ErrForbiddenHost, u.Hostname())
		}
		if u.Scheme == "" {
			u.Scheme = p.upstream.Scheme
		}
	} else {
		u = p.upstream.ResolveReference(u)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if width > 0 {
		q := u.Query()
		q.Set("w", strconv.Itoa(width))
		u.RawQuery = q.Encode()
	} else if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}
	return u, nil
}

// Key is the cache key of a resolved URL.
func Key(u *url.URL) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(u.String()))
}

// lookup returns the memoized sidecar for key.
func (p *Proxy) lookup(key string) (Meta, bool) {
	loader := ttlcache.LoaderFunc[string, Meta](
		func(cache *ttlcache.Cache[string, Meta], key string) *ttlcache.Item[string, Meta] {
			m, err := p.disk.readMeta(key)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					p.log.Warn("unreadable image cache entry", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			return cache.Set(key, m, ttlcache.DefaultTTL)
		},
	)
	item := p.meta.Get(key, ttlcache.WithLoader[string, Meta](loader))
	if item == nil {
		return Meta{}, false
	}
	return item.Value(), true
}

// Get returns the cached image for u, fetching it when missing or past the
// TTL. When the fetch fails and a copy exists, the stale copy is returned.
func (p *Proxy) Get(ctx context.Context, u *url.URL) (*Entry, Outcome, error) {
	key := Key(u)
	entry := &Entry{Key: key, Path: p.disk.bodyPath(key)}

	cached, ok := p.lookup(key)
	if ok {
		if _, err := os.Stat(entry.Path); err != nil {
			// Pruned behind our back.
			p.meta.Delete(key)
			ok = false
		}
	}
	if ok && p.now().Sub(cached.FetchedAt) < p.cfg.TTL {
		entry.Meta = cached
		return entry, OutcomeHit, nil
	}

	var etag string
	if ok {
		etag = cached.ETag
	}
	body, fresh, err := p.fetch(ctx, u, etag)
	if err != nil {
		if ok {
			p.log.Warn("serving stale image", zap.String("src", u.String()), zap.Error(err))
			entry.Meta = cached
			return entry, OutcomeStale, nil
		}
		return nil, OutcomeError, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	outcome := OutcomeMiss
	if body == nil {
		// 304: keep the body, refresh the timestamp.
		cached.FetchedAt = fresh.FetchedAt
		fresh = cached
		outcome = OutcomeRevalidated
	}
	if err := p.disk.write(key, body, fresh); err != nil {
		return nil, OutcomeError, fmt.Errorf("cache image: %w", err)
	}
	p.meta.Set(key, fresh, ttlcache.DefaultTTL)
	entry.Meta = fresh
	return entry, outcome, nil
}

// fetch downloads u. A nil body with a nil error means the upstream
// answered 304 to etag.
func (p *Proxy) fetch(ctx context.Context, u *url.URL, etag string) ([]byte, Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.UpstreamTimeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, Meta{}, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, Meta{}, err
	}
	req.Header.Set("Accept", "image/*")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Meta{}, err
	}
	defer resp.Body.Close()

	now := p.now().UTC()
	if resp.StatusCode == http.StatusNotModified && etag != "" {
		return nil, Meta{FetchedAt: now}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, Meta{}, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return nil, Meta{}, fmt.Errorf("upstream content type %q is not an image", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBytes+1))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("read upstream body: %w", err)
	}
	if int64(len(body)) > p.cfg.MaxBytes {
		return nil, Meta{}, fmt.Errorf("upstream body exceeds %d bytes", p.cfg.MaxBytes)
	}

	return body, Meta{
		Source:      u.String(),
		ContentType: ct,
		FetchedAt:   now,
		ETag:        resp.Header.Get("ETag"),
		Size:        int64(len(body)),
	}, nil
}
