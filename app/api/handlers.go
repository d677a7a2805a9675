package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quoteflex/quoteflex/app/cfg"
	"github.com/quoteflex/quoteflex/app/database"
	"github.com/quoteflex/quoteflex/app/display"
	"github.com/quoteflex/quoteflex/app/quotable"
)

const (
	defaultPageSize = 20
	maxSearchLimit  = 100
)

func NewHandler(quoteRepo database.QuoteRepository, setRepo database.SetRepository,
	selector *display.Selector, source QuoteSource, settings display.Settings) *Handler {
	return &Handler{
		quoteRepo: quoteRepo,
		setRepo:   setRepo,
		selector:  selector,
		source:    source,
		settings:  settings,
	}
}

// GetDisplayQuote serves one random quote for embedding surfaces. An empty
// selection is a valid outcome and is rendered as a null quote, not an error.
func (h *Handler) GetDisplayQuote(c *gin.Context) {
	criteria := display.Criteria{
		SetSlug:  c.Query("set"),
		Category: c.Query("category"),
	}

	quote, err := h.selector.Run(criteria)
	if err != nil {
		slog.Error("Database error", "operation", "display_quote", "set", criteria.SetSlug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select quote"})
		return
	}

	response := gin.H{
		"quote":    nil,
		"settings": h.settings,
	}
	if quote != nil {
		response["quote"] = toQuoteView(*quote)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if total, _, _, err := h.quoteRepo.GetStats(); err == nil {
		health["quotes"] = total
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, active, imported, err := h.quoteRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get statistics"})
		return
	}

	setCount, err := h.setRepo.GetSetCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_set_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": gin.H{
			"total":    total,
			"active":   active,
			"inactive": total - active,
			"imported": imported,
			"manual":   total - imported,
		},
		"sets":      setCount,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) APIListQuotes(c *gin.Context) {
	filter := database.QuoteFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		SourceType: c.Query("source_type"),
		Search:     c.Query("search"),
		OrderBy:    c.Query("order_by"),
		Order:      c.Query("order"),
		Limit:      intQuery(c, "limit", defaultPageSize),
		Offset:     intQuery(c, "offset", 0),
	}

	quotes, err := h.quoteRepo.List(filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_quotes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes"})
		return
	}

	total, err := h.quoteRepo.Count(filter)
	if err != nil {
		slog.Error("Database error", "operation", "count_quotes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count quotes"})
		return
	}

	views := make([]quoteView, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, toQuoteView(q))
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes": views,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *Handler) APICreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.quoteRepo.Create(database.QuoteInput{
		Text:              req.Text,
		Author:            req.Author,
		AuthorDescription: req.AuthorDescription,
		Source:            req.Source,
		Category:          req.Category,
		Status:            req.Status,
	})
	if err != nil {
		slog.Error("Database error", "operation", "create_quote", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quote"})
		return
	}

	// Creation and set assignment are separate writes with no atomicity
	// guarantee; a failed assignment leaves a quote without memberships.
	for _, setID := range req.SetIDs {
		if err := h.setRepo.AssignQuote(id, setID); err != nil {
			slog.Warn("Failed to assign quote to set", "quote_id", id, "set_id", setID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) APIGetQuote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	quote, err := h.quoteRepo.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_quote", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quote"})
		return
	}
	if quote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return
	}

	setIDs, err := h.setRepo.SetsForQuote(id)
	if err != nil {
		slog.Error("Database error", "operation", "sets_for_quote", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quote sets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quote":   toQuoteView(*quote),
		"set_ids": setIDs,
	})
}

func (h *Handler) APIUpdateQuote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.quoteRepo.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_quote", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quote"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return
	}

	err = h.quoteRepo.Update(id, database.QuoteUpdate{
		Text:              req.Text,
		Author:            req.Author,
		AuthorDescription: req.AuthorDescription,
		Source:            req.Source,
		Category:          req.Category,
		Status:            req.Status,
	})
	if errors.Is(err, database.ErrNoFields) && req.SetIDs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	if err != nil && !errors.Is(err, database.ErrNoFields) {
		slog.Error("Database error", "operation", "update_quote", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote"})
		return
	}

	if req.SetIDs != nil {
		if err := h.setRepo.SyncQuoteSets(id, *req.SetIDs); err != nil {
			slog.Error("Database error", "operation", "sync_quote_sets", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote sets"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) APIDeleteQuote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.quoteRepo.Delete(id); err != nil {
		slog.Error("Database error", "operation", "delete_quote", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) APIBulkQuoteAction(c *gin.Context) {
	var req bulkQuoteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var affected int
	var err error
	switch req.Action {
	case "delete":
		affected, err = h.quoteRepo.DeleteMany(req.IDs)
	case "activate":
		affected, err = h.quoteRepo.SetStatusMany(req.IDs, database.StatusActive)
	case "deactivate":
		affected, err = h.quoteRepo.SetStatusMany(req.IDs, database.StatusInactive)
	}
	if err != nil {
		slog.Error("Database error", "operation", "bulk_quote_action", "action", req.Action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Bulk action failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":   req.Action,
		"affected": affected,
	})
}

func (h *Handler) APIGetQuoteSets(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	setIDs, err := h.setRepo.SetsForQuote(id)
	if err != nil {
		slog.Error("Database error", "operation", "sets_for_quote", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quote sets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"set_ids": setIDs})
}

func (h *Handler) APISyncQuoteSets(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req syncQuoteSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.setRepo.SyncQuoteSets(id, req.SetIDs); err != nil {
		slog.Error("Database error", "operation", "sync_quote_sets", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote sets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) APIListSets(c *gin.Context) {
	sets, err := h.setRepo.List(c.Query("order_by"), c.Query("order"))
	if err != nil {
		slog.Error("Database error", "operation", "list_sets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sets"})
		return
	}

	views := make([]setView, 0, len(sets))
	for _, s := range sets {
		count, err := h.setRepo.QuoteCount(s.ID)
		if err != nil {
			slog.Error("Database error", "operation", "set_quote_count", "id", s.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count set quotes"})
			return
		}
		views = append(views, toSetView(s, count))
	}

	c.JSON(http.StatusOK, gin.H{"sets": views})
}

func (h *Handler) APICreateSet(c *gin.Context) {
	var req createSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.setRepo.Create(database.SetInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		slog.Error("Database error", "operation", "create_set", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create set"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) APIGetSet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	set, err := h.setRepo.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get set"})
		return
	}
	if set == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Set not found"})
		return
	}

	count, err := h.setRepo.QuoteCount(id)
	if err != nil {
		slog.Error("Database error", "operation", "set_quote_count", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count set quotes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"set": toSetView(*set, count)})
}

func (h *Handler) APIUpdateSet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.setRepo.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get set"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Set not found"})
		return
	}

	err = h.setRepo.Update(id, database.SetUpdate{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if errors.Is(err, database.ErrNoFields) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "update_set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update set"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) APIDeleteSet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.setRepo.Delete(id); err != nil {
		slog.Error("Database error", "operation", "delete_set", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete set"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) APIAssignQuote(c *gin.Context) {
	setID, ok := paramID(c, "id")
	if !ok {
		return
	}
	quoteID, ok := paramID(c, "quoteId")
	if !ok {
		return
	}

	if err := h.setRepo.AssignQuote(quoteID, setID); err != nil {
		slog.Error("Database error", "operation", "assign_quote", "quote_id", quoteID, "set_id", setID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assigned": true})
}

func (h *Handler) APIUnassignQuote(c *gin.Context) {
	setID, ok := paramID(c, "id")
	if !ok {
		return
	}
	quoteID, ok := paramID(c, "quoteId")
	if !ok {
		return
	}

	if err := h.setRepo.UnassignQuote(quoteID, setID); err != nil {
		slog.Error("Database error", "operation", "unassign_quote", "quote_id", quoteID, "set_id", setID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unassigned": true})
}

func (h *Handler) APISearchQuotes(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	limit := intQuery(c, "limit", defaultPageSize)
	if limit < 1 || limit > maxSearchLimit {
		limit = defaultPageSize
	}

	candidates, err := h.source.Search(c.Request.Context(), query, limit)
	if err != nil {
		slog.Error("Quote API error", "operation", "search", "query", query, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": candidates,
	})
}

func (h *Handler) APIRandomQuote(c *gin.Context) {
	candidate, err := h.source.Random(c.Request.Context())
	if err != nil {
		slog.Error("Quote API error", "operation", "random", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quote": candidate})
}

func (h *Handler) APIImportQuote(c *gin.Context) {
	var req importQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.source.ImportOne(toCandidate(req))
	if errors.Is(err, quotable.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "Quote already exists"})
		return
	}
	if err != nil {
		slog.Error("Import error", "author", req.Author, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import quote"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) APIBulkImport(c *gin.Context) {
	var req bulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates := make([]quotable.Candidate, 0, len(req.Quotes))
	for _, q := range req.Quotes {
		candidates = append(candidates, toCandidate(q))
	}

	result := h.source.BulkImport(candidates)

	c.JSON(http.StatusOK, result)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
