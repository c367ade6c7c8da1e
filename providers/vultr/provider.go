package vultr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"gitlab.bluewillows.net/root/zonesync/internal/metrics"
	"gitlab.bluewillows.net/root/zonesync/pkg/plan"
	"gitlab.bluewillows.net/root/zonesync/pkg/provider"
	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Provider implements provider.Provider for Vultr DNS. It is stateless
// across sync runs: the only state it holds is a per-run cache of listed
// record entries, used to resolve provider record ids for deletes and
// invalidated once a plan has been applied.
type Provider struct {
	name       string
	client     *Client
	logger     *slog.Logger
	defaultTTL int

	mu          sync.Mutex
	zoneEntries map[string][]dnsRecord // zone name -> listed entries
}

// ProviderOption is a functional option for configuring the Provider.
type ProviderOption func(*Provider)

// WithProviderLogger sets a custom logger for the provider.
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a new Vultr provider instance.
func New(name string, config *Config, opts ...ProviderOption) (*Provider, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		name:        name,
		logger:      slog.Default(),
		defaultTTL:  config.TTL,
		zoneEntries: make(map[string][]dnsRecord),
	}
	if p.defaultTTL == 0 {
		p.defaultTTL = defaultRecordTTL
	}

	for _, opt := range opts {
		opt(p)
	}

	clientOpts := []ClientOption{
		WithLogger(p.logger),
		WithInstance(name),
	}
	if config.APIURL != "" {
		clientOpts = append(clientOpts, WithAPIEndpoint(config.APIURL))
	}
	p.client = NewClient(config.Token, clientOpts...)

	return p, nil
}

// NewFromEnv creates a new Vultr provider from environment variables.
// This is a convenience function for use with the provider registry.
func NewFromEnv(instanceName string, opts ...ProviderOption) (*Provider, error) {
	config, err := LoadConfig(instanceName)
	if err != nil {
		return nil, err
	}

	return New(instanceName, config, opts...)
}

// NewFromMap creates a new Vultr provider from a settings map.
// This is used by the provider registry Factory pattern.
func NewFromMap(name string, settings map[string]string) (*Provider, error) {
	cfg := &Config{
		Token:  settings["TOKEN"],
		APIURL: settings["API_URL"],
	}
	if raw := settings["TTL"]; raw != "" {
		ttl, err := strconv.Atoi(raw)
		if err != nil {
			return nil, provider.ErrConfigInvalid("TTL", raw, "must be an integer")
		}
		cfg.TTL = ttl
	}
	return New(name, cfg)
}

// Name returns the provider instance name.
func (p *Provider) Name() string {
	return p.name
}

// Type returns "vultr".
func (p *Provider) Type() string {
	return "vultr"
}

// Zones returns the names of all zones hosted on the Vultr account.
func (p *Provider) Zones(ctx context.Context) ([]string, error) {
	names, err := p.client.ListDomains(ctx)
	if err != nil {
		return nil, provider.WrapError(p.name, "zones", err)
	}
	return names, nil
}

// listEntries returns the zone's record entries, from the per-run cache
// when present. A zone missing at the provider is reported as absent, not
// as an error.
func (p *Provider) listEntries(ctx context.Context, zone *record.Zone) ([]dnsRecord, bool, error) {
	p.mu.Lock()
	cached, ok := p.zoneEntries[zone.Name]
	p.mu.Unlock()
	if ok {
		return cached, true, nil
	}

	entries, err := p.client.ListRecords(ctx, zone.Domain())
	if err != nil {
		if provider.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	p.mu.Lock()
	p.zoneEntries[zone.Name] = entries
	p.mu.Unlock()
	return entries, true, nil
}

// invalidate drops the cached entries for a zone after its hosted state has
// been mutated.
func (p *Provider) invalidate(zoneName string) {
	p.mu.Lock()
	delete(p.zoneEntries, zoneName)
	p.mu.Unlock()
}

// Populate loads the zone's current records from Vultr. Entries sharing a
// (name, type) pair are grouped into one generic record whose values keep
// the provider's response order, so unchanged hosted state always yields
// the same records. Root NS entries are included like any other record. A
// zone that does not exist on Vultr populates as empty with exists=false.
func (p *Provider) Populate(ctx context.Context, zone *record.Zone, target, lenient bool) (bool, error) {
	p.logger.Debug("populate",
		slog.String("zone", zone.Name),
		slog.Bool("target", target),
		slog.Bool("lenient", lenient),
	)

	entries, exists, err := p.listEntries(ctx, zone)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(p.name).Inc()
		return false, provider.WrapError(p.name, "populate", err)
	}

	type groupKey struct {
		name string
		typ  string
	}
	groups := make(map[groupKey][]dnsRecord)
	var order []groupKey
	for _, e := range entries {
		k := groupKey{name: e.Name, typ: e.Type}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	before := zone.Len()
	for _, k := range order {
		t, err := record.ParseType(k.typ)
		if err != nil || !provider.SupportedTypes(supportedTypes, t) {
			p.logger.Warn("populate: skipping unsupported record type",
				slog.String("zone", zone.Name),
				slog.String("name", k.name),
				slog.String("type", k.typ),
			)
			continue
		}

		rec, err := recordFromEntries(t, k.name, groups[k], p.defaultTTL)
		if err != nil {
			metrics.ProviderErrors.WithLabelValues(p.name).Inc()
			return false, provider.WrapError(p.name, "populate", err)
		}
		if err := zone.Add(rec, lenient); err != nil {
			metrics.ProviderErrors.WithLabelValues(p.name).Inc()
			return false, provider.WrapError(p.name, "populate", err)
		}
	}

	p.logger.Info("populated zone",
		slog.String("zone", zone.Name),
		slog.Int("records", zone.Len()-before),
		slog.Bool("exists", exists),
	)
	return exists, nil
}

// Apply executes the plan's changes in order, one API call per record
// entry. On the first failure the already applied prefix stays in place and
// the count of fully applied changes is returned alongside the error.
func (p *Provider) Apply(ctx context.Context, pl *plan.Plan) (int, error) {
	zone := pl.Zone
	domain := zone.Domain()

	p.logger.Debug("apply",
		slog.String("zone", zone.Name),
		slog.Int("changes", len(pl.Changes)),
	)

	if err := p.client.GetDomain(ctx, domain); err != nil {
		if !provider.IsNotFound(err) {
			metrics.ProviderErrors.WithLabelValues(p.name).Inc()
			return 0, provider.WrapError(p.name, "apply", err)
		}
		p.logger.Info("zone missing at provider, creating domain",
			slog.String("domain", domain),
		)
		if err := p.client.CreateDomain(ctx, domain); err != nil {
			metrics.ProviderErrors.WithLabelValues(p.name).Inc()
			return 0, provider.WrapError(p.name, "apply", err)
		}
	}

	applied := 0
	for _, change := range pl.Changes {
		var err error
		switch change.Op {
		case plan.OpCreate:
			err = p.applyCreate(ctx, domain, change.New)
		case plan.OpUpdate:
			// Vultr entries have no stable pairing to generic values, so an
			// update is a delete of the old entries and a create of the new.
			err = p.applyDelete(ctx, zone, domain, change.Existing)
			if err == nil {
				err = p.applyCreate(ctx, domain, change.New)
			}
		case plan.OpDelete:
			err = p.applyDelete(ctx, zone, domain, change.Existing)
		default:
			err = fmt.Errorf("unknown change op %v", change.Op)
		}

		if err != nil {
			metrics.ProviderErrors.WithLabelValues(p.name).Inc()
			// The listing cache may reference entries the applied prefix
			// already deleted; drop it so a retry resolves fresh ids.
			p.invalidate(zone.Name)
			return applied, provider.WrapError(p.name, "apply "+change.Op.String(), err)
		}

		applied++
		metrics.ChangesApplied.WithLabelValues(p.name, change.Op.String()).Inc()
	}

	p.invalidate(zone.Name)

	p.logger.Info("applied plan",
		slog.String("zone", zone.Name),
		slog.Int("changes", applied),
	)
	return applied, nil
}

func (p *Provider) applyCreate(ctx context.Context, domain string, rec *record.Record) error {
	if !provider.SupportedTypes(supportedTypes, rec.Type) {
		return fmt.Errorf("unsupported record type %s", rec.Type)
	}
	params, err := paramsFor(rec, p.defaultTTL)
	if err != nil {
		return err
	}
	for _, param := range params {
		if err := p.client.CreateRecord(ctx, domain, param); err != nil {
			return err
		}
	}
	return nil
}

// applyDelete removes every provider entry matching the record's name and
// type, resolving entry ids from the per-run listing.
func (p *Provider) applyDelete(ctx context.Context, zone *record.Zone, domain string, rec *record.Record) error {
	entries, _, err := p.listEntries(ctx, zone)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name == rec.Name && e.Type == string(rec.Type) {
			if err := p.client.DeleteRecord(ctx, domain, e.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Factory returns a provider.Factory for use with the provider registry.
func Factory() provider.Factory {
	return func(name string, settings map[string]string) (provider.Provider, error) {
		return NewFromMap(name, settings)
	}
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)
