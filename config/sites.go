package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"polysearch/resolve"
	"polysearch/result"
	"polysearch/search"
)

// Group is one named bundle of sites within a category. The per-domain
// status map overrides the group enable flag for single domains.
type Group struct {
	Enabled      bool                `yaml:"enabled"`
	Domains      []string            `yaml:"domains"`
	DomainStatus map[string]bool     `yaml:"domain_status,omitempty"`
	SearchURLs   map[string][]string `yaml:"search_urls,omitempty"`
}

type blacklistSection struct {
	Enabled bool     `yaml:"enabled"`
	Domains []string `yaml:"domains"`
}

type settingsSection struct {
	EngineMaxResults   int `yaml:"engine_max_results"`
	SiteTimeoutSeconds int `yaml:"site_timeout_seconds"`
}

type storeFile struct {
	Categories map[string]map[string]*Group `yaml:"categories"`
	Blacklist  blacklistSection             `yaml:"blacklist"`
	Settings   settingsSection              `yaml:"settings"`
}

// SiteStore is the persisted site/engine configuration. It satisfies the
// orchestrator's SiteProvider; every mutation is written back to disk.
type SiteStore struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	data storeFile
}

func defaultStore() storeFile {
	return storeFile{
		Categories: map[string]map[string]*Group{
			"web": {
				"engines": &Group{
					Enabled:      true,
					Domains:      []string{"bing.com", "baidu.com", "sogou.com"},
					DomainStatus: map[string]bool{},
					SearchURLs:   map[string][]string{},
				},
			},
			"images":    {"custom": emptyGroup()},
			"videos":    {"custom": emptyGroup()},
			"resources": {"custom": emptyGroup()},
		},
		Blacklist: blacklistSection{Enabled: true},
		Settings:  settingsSection{EngineMaxResults: 35, SiteTimeoutSeconds: 10},
	}
}

func emptyGroup() *Group {
	return &Group{
		Enabled:      true,
		DomainStatus: map[string]bool{},
		SearchURLs:   map[string][]string{},
	}
}

// LoadSiteStore reads the YAML site configuration. A missing file yields
// the default configuration; a malformed one is an error.
func LoadSiteStore(path string, logger *zap.Logger) (*SiteStore, error) {
	s := &SiteStore{path: path, logger: logger, data: defaultStore()}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no site config found, using defaults", zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("read site config: %w", err)
	}
	var data storeFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	if data.Categories == nil {
		data.Categories = defaultStore().Categories
	}
	if data.Settings.EngineMaxResults == 0 {
		data.Settings.EngineMaxResults = 35
	}
	if data.Settings.SiteTimeoutSeconds == 0 {
		data.Settings.SiteTimeoutSeconds = 10
	}
	s.data = data
	return s, nil
}

// Save writes the current configuration back to disk.
func (s *SiteStore) Save() error {
	s.mu.RLock()
	raw, err := yaml.Marshal(&s.data)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal site config: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write site config: %w", err)
	}
	return nil
}

// SitesFor lists the site descriptors for a category, including disabled
// ones (the Enabled flag carries the per-domain status).
func (s *SiteStore) SitesFor(cat result.Category) []result.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sites []result.Site
	seen := make(map[string]struct{})
	for groupName, group := range s.data.Categories[cat.String()] {
		for _, domain := range group.Domains {
			domain = NormalizeDomain(domain)
			if _, dup := seen[domain]; dup {
				continue
			}
			seen[domain] = struct{}{}
			enabled := group.Enabled
			if st, ok := group.DomainStatus[domain]; ok {
				enabled = enabled && st
			}
			sites = append(sites, result.Site{
				Domain:     domain,
				Category:   groupName,
				SearchURLs: group.SearchURLs[domain],
				Enabled:    enabled,
			})
		}
	}
	return sites
}

func (s *SiteStore) Blacklist() resolve.Blacklist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolve.Blacklist{
		Domains: append([]string(nil), s.data.Blacklist.Domains...),
		Enabled: s.data.Blacklist.Enabled,
	}
}

func (s *SiteStore) Settings() search.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Settings{
		EngineMaxResults: s.data.Settings.EngineMaxResults,
		SiteTimeout:      time.Duration(s.data.Settings.SiteTimeoutSeconds) * time.Second,
	}
}

// AddSite registers a domain under a category group, updating the search
// URL templates when the domain already exists.
func (s *SiteStore) AddSite(cat result.Category, groupName, domain string, searchURLs []string) error {
	domain = NormalizeDomain(domain)
	if domain == "" {
		return fmt.Errorf("empty domain")
	}

	s.mu.Lock()
	groups, ok := s.data.Categories[cat.String()]
	if !ok {
		groups = map[string]*Group{}
		s.data.Categories[cat.String()] = groups
	}
	if groupName == "" {
		groupName = "custom"
	}
	group, ok := groups[groupName]
	if !ok {
		group = emptyGroup()
		groups[groupName] = group
	}
	if !contains(group.Domains, domain) {
		group.Domains = append(group.Domains, domain)
	}
	if len(searchURLs) > 0 {
		group.SearchURLs[domain] = searchURLs
	}
	group.DomainStatus[domain] = true
	s.mu.Unlock()

	return s.Save()
}

// RemoveSite drops a domain from every group of a category.
func (s *SiteStore) RemoveSite(cat result.Category, domain string) error {
	domain = NormalizeDomain(domain)

	s.mu.Lock()
	for _, group := range s.data.Categories[cat.String()] {
		group.Domains = remove(group.Domains, domain)
		delete(group.SearchURLs, domain)
		delete(group.DomainStatus, domain)
	}
	s.mu.Unlock()

	return s.Save()
}

// ToggleSite flips the enable flag for a single domain.
func (s *SiteStore) ToggleSite(cat result.Category, domain string, enabled bool) error {
	domain = NormalizeDomain(domain)

	s.mu.Lock()
	for _, group := range s.data.Categories[cat.String()] {
		if contains(group.Domains, domain) {
			if group.DomainStatus == nil {
				group.DomainStatus = map[string]bool{}
			}
			group.DomainStatus[domain] = enabled
		}
	}
	s.mu.Unlock()

	return s.Save()
}

func (s *SiteStore) AddToBlacklist(domain string) error {
	domain = NormalizeDomain(domain)

	s.mu.Lock()
	if !contains(s.data.Blacklist.Domains, domain) {
		s.data.Blacklist.Domains = append(s.data.Blacklist.Domains, domain)
	}
	s.mu.Unlock()

	return s.Save()
}

func (s *SiteStore) RemoveFromBlacklist(domain string) error {
	domain = NormalizeDomain(domain)

	s.mu.Lock()
	s.data.Blacklist.Domains = remove(s.data.Blacklist.Domains, domain)
	s.mu.Unlock()

	return s.Save()
}

func (s *SiteStore) SetBlacklistEnabled(enabled bool) error {
	s.mu.Lock()
	s.data.Blacklist.Enabled = enabled
	s.mu.Unlock()

	return s.Save()
}

// Snapshot returns a deep copy of the whole configuration for the admin API.
func (s *SiteStore) Snapshot() map[string]any {
	s.mu.RLock()
	raw, err := yaml.Marshal(&s.data)
	s.mu.RUnlock()
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// NormalizeDomain lowercases a domain and strips scheme, path, port and the
// www prefix.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimPrefix(d, "www.")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
