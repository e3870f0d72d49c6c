package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/metrics"
	"github.com/dadmor/campaignforge/internal/wizard"
)

type enterRequest struct {
	Step string `json:"step" binding:"required"`
}

type advanceRequest struct {
	Step  string         `json:"step" binding:"required"`
	Edits map[string]any `json:"edits"`
}

type saveRequest struct {
	AnalysisID string `json:"analysisId"`
}

// stepView is what a frontend needs to render one wizard step.
type stepView struct {
	ProcessID string         `json:"processId"`
	Step      string         `json:"step"`
	Route     string         `json:"route"`
	Schema    wizard.Step    `json:"schema"`
	Data      map[string]any `json:"data"`
	Loading   bool           `json:"loading"`
}

func newStepView(sess *wizard.StepSession) stepView {
	return stepView{
		ProcessID: sess.ProcessID(),
		Step:      sess.StepKey(),
		Route:     sess.Route(),
		Schema:    sess.Schema(),
		Data:      sess.Data(),
		Loading:   sess.Loading(),
	}
}

// wizardError maps engine errors to HTTP statuses: field problems are
// the client's to fix, in-flight collisions are conflicts, AI failures
// are upstream errors.
func wizardError(c *gin.Context, err error) {
	var fieldErr *wizard.FieldError
	var requestErr *wizard.RequestError
	var parseErr *wizard.ParseError
	var validationErr *wizard.ValidationError

	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fieldErr.Error(), "field": fieldErr.Field,
		})
	case errors.Is(err, wizard.ErrOperationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &requestErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleWizardState(c *gin.Context) {
	processID := c.Param("process")
	flow, ok := s.engine.Flow(processID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown process"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schema": flow.Process,
		"data":   s.engine.Store().Data(processID),
	})
}

func (s *Server) handleWizardEnter(c *gin.Context) {
	var req enterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	sess, err := s.engine.EnterStep(c.Param("process"), req.Step)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newStepView(sess))
}

func (s *Server) handleWizardAdvance(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	processID := c.Param("process")

	sess, err := s.engine.EnterStep(processID, req.Step)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	nextRoute, err := sess.Advance(c.Request.Context(), req.Edits)
	if s.collector != nil {
		s.collector.RecordOutcome(metrics.OpStepAdvance, time.Since(start), err)
	}
	if err != nil {
		wizardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nextRoute": nextRoute,
		"data":      s.engine.Store().Data(processID),
	})
}

func (s *Server) handleWizardLeave(c *gin.Context) {
	s.engine.LeaveStep(c.Param("process"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleWizardRestore(c *gin.Context) {
	processID := c.Param("process")
	if err := s.engine.RestoreDraft(c.Request.Context(), processID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.engine.Store().Data(processID)})
}

func (s *Server) handleWizardDiscard(c *gin.Context) {
	if err := s.engine.DiscardDraft(c.Request.Context(), c.Param("process")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleWizardSave finishes a wizard: it persists the accumulated record
// through the matching service, then discards the draft so the next run
// starts clean.
func (s *Server) handleWizardSave(c *gin.Context) {
	processID := c.Param("process")
	ctx := c.Request.Context()
	data := s.engine.Store().Data(processID)

	var req saveRequest
	_ = c.ShouldBindJSON(&req)

	switch processID {
	case flows.CampaignProcessID:
		saved, err := s.campaigns.SaveCampaign(ctx, data)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.discardAfterSave(c, processID)
		c.JSON(http.StatusCreated, gin.H{
			"analysisId": saved.AnalysisID,
			"strategyId": saved.StrategyID,
			"nextRoute":  flows.StrategiesRoute,
		})

	case flows.StrategyProcessID:
		if req.AnalysisID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "analysisId is required"})
			return
		}
		strategyID, err := s.campaigns.SaveStrategy(ctx, req.AnalysisID, data)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.discardAfterSave(c, processID)
		c.JSON(http.StatusCreated, gin.H{
			"strategyId": strategyID,
			"nextRoute":  flows.StrategiesRoute,
		})

	case flows.RegistrationProcessID:
		profileID, err := s.registration.Register(ctx, data)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		s.discardAfterSave(c, processID)
		c.JSON(http.StatusCreated, gin.H{
			"profileId": profileID,
			"nextRoute": flows.LoginRoute,
		})

	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown process"})
	}
}

func (s *Server) discardAfterSave(c *gin.Context, processID string) {
	if err := s.engine.DiscardDraft(c.Request.Context(), processID); err != nil {
		s.logger.Warn("discard after save failed", "process", processID, "error", err)
	}
}
