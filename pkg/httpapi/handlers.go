package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bastiangx/prefixd/internal/utils"
	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/gin-gonic/gin"
)

// Suggestion is one ranked term.
type Suggestion struct {
	Word string `json:"word"`
	Rank uint16 `json:"rank"`
}

// SuggestResponse is the body of GET /api/suggest.
type SuggestResponse struct {
	Prefix      string       `json:"prefix"`
	Suggestions []Suggestion `json:"suggestions"`
	Count       int          `json:"count"`
	TimeTaken   int64        `json:"time_us"`
}

// CacheResponse is the body of GET /api/cache.
type CacheResponse struct {
	HasCache bool                `json:"has_cache"`
	Size     int                 `json:"size"`
	Entries  map[string][]string `json:"entries"`
}

// Health reports liveness with the engine options and index counters.
func (h *Handler) Health(c *gin.Context) {
	opts := h.suggester.Options()
	options := gin.H{
		"ignore_case":    opts.IgnoreCase,
		"prebuilt_terms": opts.PrebuiltTerms,
		"cache":          opts.Cache != nil,
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"stats":   h.suggester.Stats(),
		"options": options,
	})
}

// Suggest handles GET /api/suggest?prefix=&limit=&sorted=.
// prefix is required but may be empty. limit defaults to the server
// default and is clamped to max_limit; sorted defaults to true.
func (h *Handler) Suggest(c *gin.Context) {
	prefix, ok := c.GetQuery("prefix")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'prefix' parameter"})
		return
	}
	if err := h.rules.Check(prefix); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
			return
		}
		limit = n
	}

	sorted := true
	if raw := c.Query("sorted"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'sorted' parameter"})
			return
		}
		sorted = b
	}

	start := time.Now()
	words, err := h.suggester.FindSuggestions(prefix, h.config.Limit(limit), sorted)
	elapsed := time.Since(start)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, suggest.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ranks := utils.RankList(len(words))
	suggestions := make([]Suggestion, len(words))
	for i, w := range words {
		suggestions[i] = Suggestion{Word: w, Rank: ranks[i]}
	}
	c.JSON(http.StatusOK, SuggestResponse{
		Prefix:      prefix,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// CacheInfo handles GET /api/cache.
func (h *Handler) CacheInfo(c *gin.Context) {
	c.JSON(http.StatusOK, CacheResponse{
		HasCache: h.suggester.HasCache(),
		Size:     h.suggester.CacheSize(),
		Entries:  h.suggester.CacheSnapshot(),
	})
}

// ClearCache handles DELETE /api/cache; 404 when no cache is configured.
func (h *Handler) ClearCache(c *gin.Context) {
	if !h.suggester.HasCache() {
		c.JSON(http.StatusNotFound, gin.H{"error": "cache is disabled"})
		return
	}
	h.suggester.ClearCache()
	c.Status(http.StatusNoContent)
}
