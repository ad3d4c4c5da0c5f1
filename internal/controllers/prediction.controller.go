package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"incomify/internal/cache"
	"incomify/internal/ml"
	"incomify/internal/models"
	"incomify/internal/render"
	"incomify/internal/repository"
	"incomify/internal/services"
	"incomify/internal/session"
)

const whatIfResultTTL = time.Hour

type PredictionController struct {
	sessions *session.Store
	mlClient ml.MLClient
	repo     repository.PredictionRepository
	recorder services.Recorder
	cache    *cache.RedisClient // optional, may be nil
}

func NewPredictionController(
	sessions *session.Store,
	mlClient ml.MLClient,
	repo repository.PredictionRepository,
	recorder services.Recorder,
	redisCache *cache.RedisClient,
) *PredictionController {
	return &PredictionController{
		sessions: sessions,
		mlClient: mlClient,
		repo:     repo,
		recorder: recorder,
		cache:    redisCache,
	}
}

func sessionID(c *gin.Context) (string, bool) {
	id, exists := c.Get("session_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Missing session",
			"error":   "Session id not found in request context",
		})
		return "", false
	}
	return id.(string), true
}

// UpdateForm godoc
// @Summary Merge a partial update into the primary input form
// @Description Update one or more primary form fields without touching the rest (non-destructive partial update)
// @Tags prediction
// @Accept json
// @Produce json
// @Param update body models.FieldUpdate true "Fields to merge"
// @Success 200 {object} map[string]interface{} "Updated form state"
// @Failure 400 {object} map[string]interface{} "Invalid input format"
// @Router /prediction/form [put]
func (pc *PredictionController) UpdateForm(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var update models.FieldUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid input format",
			"error":   err.Error(),
		})
		return
	}

	sess := pc.sessions.GetOrCreate(id)
	sess.UpdateInput(update)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Form updated successfully",
		"data":    sess.Snapshot().Input,
	})
}

// MakePrediction godoc
// @Summary Submit the primary form for an income prediction
// @Description Coerce the form (monthly expenditures are annualized), call the prediction service, seed the what-if form from the submitted inputs, and clear any stale what-if result
// @Tags prediction
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Prediction result"
// @Failure 400 {object} map[string]interface{} "Validation failure, no request issued"
// @Failure 409 {object} map[string]interface{} "Another prediction is in flight"
// @Failure 502 {object} map[string]interface{} "Prediction service failure"
// @Router /prediction [post]
func (pc *PredictionController) MakePrediction(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess := pc.sessions.GetOrCreate(id)
	result, payload, err := sess.Submit(c.Request.Context(), pc.mlClient)
	if err != nil {
		pc.renderSubmitError(c, sess, err)
		return
	}

	// A fresh baseline invalidates any cached what-if view.
	if pc.cache != nil {
		if err := pc.cache.DeleteWhatIfResult(id); err != nil {
			log.Printf("Failed to invalidate what-if result for session %s: %v", id, err)
		}
	}

	pc.recordHistory(sess, payload, result, false)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Prediction successful",
		"data": gin.H{
			"result":        result,
			"view":          render.Result(result),
			"what_if_ready": true,
		},
	})
}

// UpdateWhatIfForm godoc
// @Summary Merge a partial update into the what-if form
// @Description Adjust the what-if copy of the inputs. The primary form and its result are never modified by this
// @Tags prediction
// @Accept json
// @Produce json
// @Param update body models.FieldUpdate true "Fields to merge"
// @Success 200 {object} map[string]interface{} "Updated what-if form state"
// @Failure 400 {object} map[string]interface{} "Invalid input format"
// @Failure 409 {object} map[string]interface{} "No baseline prediction yet"
// @Router /prediction/what-if/form [put]
func (pc *PredictionController) UpdateWhatIfForm(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var update models.FieldUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid input format",
			"error":   err.Error(),
		})
		return
	}

	sess := pc.sessions.GetOrCreate(id)
	if err := sess.UpdateWhatIf(update); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "What-if is not available yet",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "What-if form updated successfully",
		"data":    sess.Snapshot().WhatIf,
	})
}

// SimulateWhatIf godoc
// @Summary Run a what-if simulation
// @Description Coerce the what-if form and call the prediction service, then report the signed delta against the primary result
// @Tags prediction
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "What-if result with delta"
// @Failure 400 {object} map[string]interface{} "Validation failure, no request issued"
// @Failure 409 {object} map[string]interface{} "No baseline prediction yet or another prediction in flight"
// @Failure 502 {object} map[string]interface{} "Prediction service failure"
// @Router /prediction/what-if [post]
func (pc *PredictionController) SimulateWhatIf(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess := pc.sessions.GetOrCreate(id)
	result, payload, err := sess.Simulate(c.Request.Context(), pc.mlClient)
	if err != nil {
		pc.renderSubmitError(c, sess, err)
		return
	}

	state := sess.Snapshot()
	view := render.WhatIf(state.Result, result)

	if pc.cache != nil {
		if err := pc.cache.StoreWhatIfResult(id, view, whatIfResultTTL); err != nil {
			log.Printf("Failed to cache what-if result for session %s: %v", id, err)
		}
	}

	pc.recordHistory(sess, payload, result, true)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "What-if simulation successful",
		"data":    view,
	})
}

// GetWhatIfResult godoc
// @Summary Get the last what-if result for this session
// @Description Read the cached what-if view, falling back to the in-memory session state when the cache is unavailable
// @Tags prediction
// @Produce json
// @Success 200 {object} map[string]interface{} "What-if result retrieved successfully"
// @Failure 404 {object} map[string]interface{} "No what-if result available"
// @Router /prediction/what-if/result [get]
func (pc *PredictionController) GetWhatIfResult(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if pc.cache != nil {
		view, found, err := pc.cache.GetWhatIfResult(id)
		if err != nil {
			log.Printf("Failed to read what-if result for session %s: %v", id, err)
		} else if found {
			c.JSON(http.StatusOK, gin.H{
				"status":  "success",
				"message": "What-if result retrieved successfully",
				"data":    view,
			})
			return
		}
	}

	if sess, exists := pc.sessions.Get(id); exists {
		state := sess.Snapshot()
		if view := render.WhatIf(state.Result, state.WhatIfResult); view != nil {
			c.JSON(http.StatusOK, gin.H{
				"status":  "success",
				"message": "What-if result retrieved successfully",
				"data":    view,
			})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"status":  "error",
		"message": "What-if result has expired or not found",
	})
}

// GetState godoc
// @Summary Get the full session state
// @Description Return the form, what-if form, results, loading flag, and rendered views for this session
// @Tags prediction
// @Produce json
// @Success 200 {object} map[string]interface{} "Session state"
// @Router /prediction/state [get]
func (pc *PredictionController) GetState(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess := pc.sessions.GetOrCreate(id)
	state := sess.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Session state retrieved successfully",
		"data": gin.H{
			"state":        state,
			"result_view":  render.Result(state.Result),
			"what_if_view": render.WhatIf(state.Result, state.WhatIfResult),
		},
	})
}

// TestMLConnection godoc
// @Summary Test the prediction service connection
// @Description Probe the upstream prediction service
// @Tags prediction
// @Produce json
// @Success 200 {object} map[string]interface{} "Prediction service is healthy"
// @Failure 500 {object} map[string]interface{} "Prediction service is not reachable"
// @Router /prediction/health [get]
func (pc *PredictionController) TestMLConnection(c *gin.Context) {
	if err := pc.mlClient.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Prediction service is not reachable",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Prediction service is healthy",
		"timestamp": time.Now(),
	})
}

// GetSessionRecords godoc
// @Summary Get this session's prediction history
// @Description Retrieve prediction history for the current session
// @Tags prediction
// @Produce json
// @Param limit query int false "Maximum records to return (default 10)"
// @Success 200 {object} map[string]interface{} "Prediction history retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid limit parameter"
// @Failure 500 {object} map[string]interface{} "Failed to retrieve prediction history"
// @Router /prediction/me [get]
func (pc *PredictionController) GetSessionRecords(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	limitStr := c.Query("limit")
	limit := 10 // Default limit
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid limit parameter",
				"error":   "Limit must be a positive integer",
			})
			return
		}
	}

	records, err := pc.repo.GetRecordsBySessionID(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve prediction history",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Prediction history retrieved successfully",
		"data":    records,
	})
}

// GetRecordsByDateRange godoc
// @Summary Get this session's prediction history by date range
// @Description Retrieve prediction history for the current session within a date range
// @Tags prediction
// @Produce json
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Prediction history retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid date format"
// @Failure 500 {object} map[string]interface{} "Failed to retrieve prediction history"
// @Router /prediction/me/date-range [get]
func (pc *PredictionController) GetRecordsByDateRange(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	startDate, endDate, ok := parseDateRange(c)
	if !ok {
		return
	}

	records, err := pc.repo.GetRecordsBySessionIDAndDateRange(id, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve prediction history",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Prediction history retrieved successfully",
		"data":    records,
	})
}

// GetIncomeSeries godoc
// @Summary Get this session's predicted income series
// @Description Retrieve predicted income over time for the current session within a date range
// @Tags prediction
// @Produce json
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Income series retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid date format"
// @Failure 500 {object} map[string]interface{} "Failed to retrieve income series"
// @Router /prediction/me/series [get]
func (pc *PredictionController) GetIncomeSeries(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	startDate, endDate, ok := parseDateRange(c)
	if !ok {
		return
	}

	points, err := pc.repo.GetIncomeSeriesBySessionID(id, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve income series",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Income series retrieved successfully",
		"data":    points,
	})
}

// GetRecordByID godoc
// @Summary Get a prediction record by ID
// @Description Retrieve a specific prediction record by ID
// @Tags prediction
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} map[string]interface{} "Record retrieved successfully"
// @Failure 400 {object} map[string]interface{} "Invalid record ID"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Record not found"
// @Router /prediction/{id} [get]
func (pc *PredictionController) GetRecordByID(c *gin.Context) {
	record, ok := pc.ownedRecord(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Record retrieved successfully",
		"data":    record,
	})
}

// DeleteRecord godoc
// @Summary Delete a prediction record
// @Description Delete a specific prediction record by ID
// @Tags prediction
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} map[string]interface{} "Record deleted successfully"
// @Failure 400 {object} map[string]interface{} "Invalid record ID"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Record not found"
// @Router /prediction/{id} [delete]
func (pc *PredictionController) DeleteRecord(c *gin.Context) {
	record, ok := pc.ownedRecord(c)
	if !ok {
		return
	}

	if err := pc.repo.DeleteRecord(record.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to delete record",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Record deleted successfully",
	})
}

func (pc *PredictionController) ownedRecord(c *gin.Context) (*models.PredictionRecord, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}

	recordID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid record ID",
			"error":   "ID must be a valid positive integer",
		})
		return nil, false
	}

	record, err := pc.repo.GetRecordByID(uint(recordID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Record not found",
		})
		return nil, false
	}

	if record.SessionID != id {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "Access denied: record belongs to a different session",
		})
		return nil, false
	}

	return record, true
}

func (pc *PredictionController) renderSubmitError(c *gin.Context, sess *session.Session, err error) {
	var validationErr *session.ValidationError
	switch {
	case errors.Is(err, session.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "A prediction is already in flight",
			"error":   err.Error(),
		})
	case errors.Is(err, session.ErrNoBaseline):
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": "What-if is not available yet",
			"error":   err.Error(),
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Validation failed",
			"error":   err.Error(),
		})
	default:
		// The session already normalized the user-facing message.
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": sess.Snapshot().LastError,
			"error":   err.Error(),
		})
	}
}

// recordHistory persists the payload that was actually sent upstream, not
// the live form: an edit landing after submission must not leak into the row.
func (pc *PredictionController) recordHistory(sess *session.Session, payload *models.PredictionPayload, result *models.PredictionResult, isWhatIf bool) {
	topFeatures, _ := json.Marshal(result.ImportantFeatures)

	record := &models.PredictionRecord{
		SessionID:            sess.ID(),
		Region:               payload.Region,
		TotalFoodExpenditure: payload.TotalFoodExpenditure,
		EducationExpenditure: payload.EducationExpenditure,
		HouseFloorArea:       payload.HouseFloorArea,
		NumberOfAppliances:   payload.NumberOfAppliances,
		PredictedIncome:      result.PredictedIncome,
		PredictionStd:        result.PredictionStd,
		TopFeatures:          string(topFeatures),
		IsWhatIf:             isWhatIf,
	}

	if err := pc.recorder.Record(record); err != nil {
		log.Printf("Failed to queue history record for session %s: %v", sess.ID(), err)
	}
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	startDate, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid start date format",
			"error":   "Date must be in YYYY-MM-DD format",
		})
		return time.Time{}, time.Time{}, false
	}

	endDate, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid end date format",
			"error":   "Date must be in YYYY-MM-DD format",
		})
		return time.Time{}, time.Time{}, false
	}

	endDate = endDate.Add(24 * time.Hour).Add(-time.Second)
	return startDate, endDate, true
}
