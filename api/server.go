package api

import (
	"log"
	"net/http"

	"carevisits/adapters/charts"
	"carevisits/app"
	"carevisits/domain/core"
	"carevisits/domain/survey"

	"github.com/gin-gonic/gin"
)

// Server exposes the one-shot analysis over HTTP. Each request gets its own
// chart workbook; nothing is shared between invocations.
type Server struct {
	router *gin.Engine
}

// NewServer creates the HTTP server and registers routes.
func NewServer(ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	s := &Server{router: gin.Default()}
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/analyze", s.handleAnalyze)
	return s
}

// Run starts serving on the given address.
func (s *Server) Run(addr string) error {
	log.Printf("[api] listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// analyzeRequest is the request payload: the tidy survey table as JSON rows.
type analyzeRequest struct {
	Observations []survey.Observation `json:"observations" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	table := make(survey.Table, len(req.Observations))
	for i, o := range req.Observations {
		table[i] = normalize(o)
	}

	service := app.NewAnalysisService(charts.NewBuilder())
	bundle, err := service.Analyze(c.Request.Context(), table)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case core.IsMissingFieldError(err):
			status = http.StatusBadRequest
		case core.IsDegenerateSampleError(err), core.IsRankDeficientModelError(err):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// normalize re-parses the binary fields so lowercase or numeric spellings
// in the payload decode the same way file loaders do.
func normalize(o survey.Observation) survey.Observation {
	o.Depression = survey.ParseYesNo(o.Depression.String())
	o.Chronic = survey.ParseYesNo(o.Chronic.String())
	o.HeartAttack = survey.ParseYesNo(o.HeartAttack.String())
	o.AnginaOrCHD = survey.ParseYesNo(o.AnginaOrCHD.String())
	o.Stroke = survey.ParseYesNo(o.Stroke.String())
	o.Asthma = survey.ParseYesNo(o.Asthma.String())
	o.SkinCancer = survey.ParseYesNo(o.SkinCancer.String())
	o.OtherCancer = survey.ParseYesNo(o.OtherCancer.String())
	o.COPD = survey.ParseYesNo(o.COPD.String())
	o.Arthritis = survey.ParseYesNo(o.Arthritis.String())
	o.Diabetes = survey.ParseYesNo(o.Diabetes.String())
	o.KidneyDisease = survey.ParseYesNo(o.KidneyDisease.String())
	if o.Visits != nil && *o.Visits < 0 {
		o.Visits = nil
	}
	return o
}
