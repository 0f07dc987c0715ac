// internal/server/handlers.go
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
	"pairdp/internal/pairs"
)

// AlignRequest is the POST /v1/align body. Empty Algorithm and ScoreType
// use the server defaults.
type AlignRequest struct {
	ID        string `json:"id" binding:"max=256"`
	Seq1      string `json:"seq1"`
	Seq2      string `json:"seq2"`
	Algorithm string `json:"algorithm" binding:"omitempty,oneof=viterbi forward backward all"`
	ScoreType string `json:"score_type" binding:"omitempty,oneof=probability prob odds null null_model"`
}

type StateInfo struct {
	Name     string `json:"name"`
	Advance  [2]int `json:"advance"`
	Emitting bool   `json:"emitting"`
}

type ModelInfo struct {
	Name     string      `json:"name"`
	Version  uint64      `json:"version"`
	Digest   string      `json:"digest"`
	Path     string      `json:"path"`
	LoadedAt string      `json:"loaded_at"`
	States   []StateInfo `json:"states"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	v1 := r.Group("/v1")
	v1.POST("/align", s.handleAlign)
	v1.GET("/model", s.handleModel)
}

func (s *Server) handleAlign(c *gin.Context) {
	var req AlignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{err.Error()})
		return
	}
	if n := s.cfg.MaxSeqLen; n > 0 && (len(req.Seq1) > n || len(req.Seq2) > n) {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody{"sequence longer than server limit"})
		return
	}

	cur := s.cur.Load()
	algo := req.Algorithm
	if algo == "" {
		algo = cur.template.Algorithm
	}
	st := cur.template.ScoreType
	if req.ScoreType != "" {
		var err error
		if st, err = dist.ParseScoreType(req.ScoreType); err != nil {
			c.JSON(http.StatusBadRequest, errorBody{err.Error()})
			return
		}
	}
	eng, err := cur.engine(algo, st)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{err.Error()})
		return
	}

	res, err := eng.Run(c.Request.Context(), pairs.Inline(req.ID, req.Seq1, req.Seq2))
	switch {
	case errors.Is(err, alphabet.ErrIllegalSymbol):
		c.JSON(http.StatusBadRequest, errorBody{err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorBody{err.Error()})
	default:
		c.JSON(http.StatusOK, res.V1())
	}
}

func (s *Server) handleModel(c *gin.Context) {
	cur := s.cur.Load()
	m := cur.file.Model
	info := ModelInfo{
		Name:     m.Name(),
		Version:  m.Version(),
		Digest:   cur.file.Digest,
		Path:     cur.file.Path,
		LoadedAt: cur.at.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, st := range m.States() {
		info.States = append(info.States, StateInfo{Name: st.Name(), Advance: st.Advance(), Emitting: st.Emitting()})
	}
	c.JSON(http.StatusOK, info)
}

