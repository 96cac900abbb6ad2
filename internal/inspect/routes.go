package inspect

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/observability"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/codec"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
	"github.com/danmuck/docsync/internal/protocol/wiretext"
)

// mergeBodyFactor bounds a merge body relative to the message size limit,
// leaving room for several base64 chunks.
const mergeBodyFactor = 8

type mergeRequest struct {
	Chunks [][]byte `json:"chunks"`
}

// DocumentView is the JSON form of a merged lookup result.
type DocumentView struct {
	Key     string         `json:"key"`
	Found   bool           `json:"found"`
	Seconds int64          `json:"seconds"`
	Nanos   int32          `json:"nanos"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func NewDocumentView(d model.MaybeDocument) DocumentView {
	return DocumentView{
		Key:     d.Key().String(),
		Found:   d.Found(),
		Seconds: d.Version().Seconds,
		Nanos:   d.Version().Nanos,
		Fields:  d.Data(),
	}
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.Appeared).String(),
			"service":  s.Name,
			"database": s.Database,
			"version":  version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	v1 := s.router.Group("/v1")
	v1.GET("/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": schema.Names()})
	})
	v1.POST("/decode/:message", s.handleDecode)
	v1.POST("/lookup/merge", s.handleMerge)
}

func (s *Server) handleDecode(c *gin.Context) {
	name := c.Param("message")
	mt, ok := schema.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown message: " + name})
		return
	}
	body, err := s.readBody(c)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	msg, _ := syncpb.New(mt)
	err = codec.DecodeWith(body, msg, s.limits)
	observability.RecordDecode(name, len(body), err == nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text, err := wiretext.FormatBytes(mt, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": name, "bytes": len(body), "text": text})
}

func (s *Server) handleMerge(c *gin.Context) {
	if s.limits.MaxMessageBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.limits.MaxMessageBytes*mergeBodyFactor))
	}
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	docs, err := s.datastore.MergeLookupResponses(req.Chunks)
	observability.RecordLookupMerge(len(req.Chunks), len(docs), err == nil)
	if err != nil {
		log.Warn().Int("chunks", len(req.Chunks)).Err(err).Msg("lookup merge failed")
		c.JSON(mergeFailureStatus(err), gin.H{"error": err.Error()})
		return
	}
	views := make([]DocumentView, len(docs))
	for i, d := range docs {
		views[i] = NewDocumentView(d)
	}
	// Render before writing the status: field values such as NaN have no
	// JSON form.
	body, err := json.Marshal(gin.H{"documents": views})
	if err != nil {
		log.Warn().Int("documents", len(views)).Err(err).Msg("lookup merge render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func mergeFailureStatus(err error) int {
	switch {
	case errors.Is(err, frame.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, protocol.ErrParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) readBody(c *gin.Context) ([]byte, error) {
	r := c.Request.Body
	if s.limits.MaxMessageBytes > 0 {
		r = http.MaxBytesReader(c.Writer, r, int64(s.limits.MaxMessageBytes))
	}
	return io.ReadAll(r)
}
