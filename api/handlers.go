package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"polysearch/result"
)

// defaultResultLimit caps a search response unless the request asks for a
// different cap.
const defaultResultLimit = 60

type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Page     uint   `json:"page,omitempty"`
	Limit    uint   `json:"limit,omitempty"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

type SearchResult struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
	Source   string `json:"source"`
	Score    int64  `json:"score"`
}

type SiteRequest struct {
	Category   string   `json:"category"`
	Group      string   `json:"group,omitempty"`
	Domain     string   `json:"domain"`
	SearchURLs []string `json:"search_urls,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"`
}

type BlacklistRequest struct {
	Domain string `json:"domain"`
	Action string `json:"action"`
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "missing query parameter", http.StatusBadRequest)
		return
	}

	set := s.orchestrator.Search(r.Context(), result.Query{
		Text:     req.Query,
		Category: result.ParseCategory(req.Category),
		Page:     req.Page,
	})

	limit := req.Limit
	if limit == 0 {
		limit = defaultResultLimit
	}
	if uint(len(set)) > limit {
		set = set[:limit]
	}

	resp := SearchResponse{Query: req.Query, Results: make([]SearchResult, 0, len(set)), Total: len(set)}
	for _, item := range set {
		resp.Results = append(resp.Results, SearchResult{
			Title:    item.Title,
			URL:      item.URL,
			ImageURL: item.ImageURL,
			Source:   item.SourceDomain,
			Score:    item.Score,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) addSiteHandler(w http.ResponseWriter, r *http.Request) {
	req, cat, ok := s.decodeSiteRequest(w, r)
	if !ok {
		return
	}
	if err := s.store.AddSite(cat, req.Group, req.Domain, req.SearchURLs); err != nil {
		s.logger.Error("add site failed", zap.String("domain", req.Domain), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added", "domain": req.Domain})
}

func (s *Server) removeSiteHandler(w http.ResponseWriter, r *http.Request) {
	req, cat, ok := s.decodeSiteRequest(w, r)
	if !ok {
		return
	}
	if err := s.store.RemoveSite(cat, req.Domain); err != nil {
		s.logger.Error("remove site failed", zap.String("domain", req.Domain), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "domain": req.Domain})
}

func (s *Server) toggleSiteHandler(w http.ResponseWriter, r *http.Request) {
	req, cat, ok := s.decodeSiteRequest(w, r)
	if !ok {
		return
	}
	if req.Enabled == nil {
		http.Error(w, "missing enabled parameter", http.StatusBadRequest)
		return
	}
	if err := s.store.ToggleSite(cat, req.Domain, *req.Enabled); err != nil {
		s.logger.Error("toggle site failed", zap.String("domain", req.Domain), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "toggled", "domain": req.Domain})
}

func (s *Server) blacklistHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BlacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Domain) == "" {
		http.Error(w, "missing domain parameter", http.StatusBadRequest)
		return
	}

	var err error
	switch req.Action {
	case "add", "":
		err = s.store.AddToBlacklist(req.Domain)
	case "remove":
		err = s.store.RemoveFromBlacklist(req.Domain)
	default:
		http.Error(w, "unknown action: "+req.Action, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error("blacklist update failed", zap.String("domain", req.Domain), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "domain": req.Domain})
}

func (s *Server) decodeSiteRequest(w http.ResponseWriter, r *http.Request) (SiteRequest, result.Category, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return SiteRequest{}, 0, false
	}

	var req SiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return SiteRequest{}, 0, false
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Domain) == "" {
		http.Error(w, "missing domain parameter", http.StatusBadRequest)
		return SiteRequest{}, 0, false
	}
	return req, result.ParseCategory(req.Category), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
