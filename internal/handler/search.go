package handler

import (
	"bufio"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"book-scout/internal/pipeline"
)

const (
	// scannerInitialBuffer is the starting buffer for the upstream line scanner.
	scannerInitialBuffer = 12 * 1024
	// scannerMaxBuffer bounds a single streamed line.
	scannerMaxBuffer = 1024 * 1024
)

// SearchRequest is the inbound body for POST /search-books.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchHandler serves the book search endpoint.
type SearchHandler struct {
	pipeline *pipeline.Pipeline
}

// NewSearchHandler creates a SearchHandler backed by the given pipeline.
func NewSearchHandler(p *pipeline.Pipeline) *SearchHandler {
	return &SearchHandler{pipeline: p}
}

// HandleSearchBooks runs one query through the pipeline and streams the
// narration back. Errors before streaming begins become JSON bodies; once
// bytes have been written, failures are only logged.
func (h *SearchHandler) HandleSearchBooks(c *gin.Context) {
	startTime := time.Now()

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Covers a missing body, malformed JSON, and a non-string query.
		c.JSON(http.StatusBadRequest, gin.H{"error": pipeline.InvalidInputMessage})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": pipeline.InvalidInputMessage})
		return
	}

	// Normalize to NFC before the moderation check so Unicode lookalike
	// characters can't slip past the word list.
	query = norm.NFC.String(query)

	outcome, stageErr := h.pipeline.Run(c.Request.Context(), query)
	if stageErr != nil {
		log.Printf("[PIPELINE] Request failed after %v: %s", time.Since(startTime), stageErr.Message())
		c.JSON(stageErr.Status(), gin.H{"error": stageErr.Message()})
		return
	}
	defer outcome.Body.Close()

	c.Header("Content-Type", outcome.ContentType)
	c.Status(http.StatusOK)

	scanner := bufio.NewScanner(outcome.Body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// scanner.Bytes is only valid until the next Scan; write it out
		// before touching the scanner again.
		if _, err := c.Writer.Write(line); err != nil {
			log.Printf("[STREAM] Client write failed: %v", err)
			return
		}
		if _, err := c.Writer.Write([]byte{'\n'}); err != nil {
			log.Printf("[STREAM] Client write failed: %v", err)
			return
		}
		c.Writer.Flush()
	}
	if err := scanner.Err(); err != nil {
		// Streaming already started; nothing to retract.
		log.Printf("[STREAM] Upstream read failed mid-stream: %v", err)
		return
	}

	log.Printf("[PERF] Request completed in %v (moderated=%v)", time.Since(startTime), outcome.Moderated)
}
