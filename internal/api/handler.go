package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"footfall_service/internal/core"
	"footfall_service/internal/domain/model"
	"footfall_service/internal/domain/repository"
)

const dateLayout = "2006-01-02"

type Handler struct {
	catalog   *repository.MemoryCatalog
	recorder  repository.ObservationRecorder
	predictor *core.PredictionService
	training  *core.TrainingService
}

func NewHandler(
	catalog *repository.MemoryCatalog,
	recorder repository.ObservationRecorder,
	predictor *core.PredictionService,
	training *core.TrainingService,
) *Handler {
	return &Handler{
		catalog:   catalog,
		recorder:  recorder,
		predictor: predictor,
		training:  training,
	}
}

// Register mounts all routes under /api/v1.
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.POST("/predict", h.Predict)
	v1.POST("/predict/range", h.PredictRange)
	v1.POST("/train", h.Train)
	v1.GET("/model/metrics", h.ModelMetrics)
	v1.GET("/centers", h.ListCenters)
	v1.GET("/centers/:code/trend", h.CenterTrend)
	v1.POST("/catalog/import", h.ImportCatalog)
	v1.GET("/catalog/export", h.ExportCatalog)
	v1.POST("/catalog/holidays/import", h.ImportHolidays)
	v1.POST("/series/import", h.ImportSeries)
}

type predictRequest struct {
	LocationCode string `json:"location_code"`
	Date         string `json:"date"`
}

func (h *Handler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.LocationCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_code is required"})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	forecast, err := h.predictor.PredictSingleDay(c.Request.Context(), req.LocationCode, date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

type predictRangeRequest struct {
	LocationCode string `json:"location_code"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func (h *Handler) PredictRange(c *gin.Context) {
	var req predictRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.LocationCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_code is required"})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	forecasts, err := h.predictor.PredictRange(c.Request.Context(), req.LocationCode, start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts, "count": len(forecasts)})
}

func (h *Handler) Train(c *gin.Context) {
	trained, err := h.training.Retrain(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trained_at": trained.TrainedAt,
		"trees":      len(trained.Trees),
		"metrics":    trained.Metrics,
		"thresholds": trained.Thresholds,
	})
}

func (h *Handler) ModelMetrics(c *gin.Context) {
	m := h.predictor.Model()
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no trained model available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trained_at":      m.TrainedAt,
		"trees":           len(m.Trees),
		"hyperparams":     m.Hyperparams,
		"metrics":         m.Metrics,
		"segment_metrics": m.Segments,
		"thresholds":      m.Thresholds,
	})
}

func (h *Handler) ListCenters(c *gin.Context) {
	centers := h.catalog.ListCenters()
	c.JSON(http.StatusOK, gin.H{"centers": centers, "count": len(centers)})
}

// CenterTrend summarizes the direction of a center's recent history.
// The optional days query parameter controls the window, default 90.
func (h *Handler) CenterTrend(c *gin.Context) {
	days := 90
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer >= 2"})
			return
		}
		days = parsed
	}
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be YYYY-MM-DD"})
			return
		}
		asOf = parsed.AddDate(0, 0, 1)
	}

	trend, err := h.predictor.Trend(c.Request.Context(), c.Param("code"), asOf, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

// ImportCatalog replaces the center catalog with the uploaded CSV. The
// response carries the importer's correction report so the operator
// can see what was normalized or defaulted.
func (h *Handler) ImportCatalog(c *gin.Context) {
	centers, report, err := repository.ImportCatalogCSV(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.catalog.ReplaceCenters(centers)
	log.Printf("catalog import: %d centers, %d corrections", len(centers), len(report.Corrections))
	c.JSON(http.StatusOK, gin.H{"imported": len(centers), "corrections": report.Corrections})
}

func (h *Handler) ExportCatalog(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="centers.csv"`)
	if err := repository.ExportCatalogCSV(c.Writer, h.catalog.ListCenters()); err != nil {
		log.Printf("catalog export: %v", err)
	}
}

func (h *Handler) ImportHolidays(c *gin.Context) {
	holidays, err := repository.ImportHolidaysCSV(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.catalog.ReplaceHolidays(holidays)
	c.JSON(http.StatusOK, gin.H{"imported": len(holidays)})
}

// ImportSeries ingests an observation CSV. Centers appearing in the
// series but missing from the catalog are added with inferred category
// and baseline; existing catalog entries are kept as-is.
func (h *Handler) ImportSeries(c *gin.Context) {
	observations, derived, report, err := repository.ImportSeriesCSV(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}

	merged := h.catalog.ListCenters()
	known := make(map[string]struct{}, len(merged))
	for _, center := range merged {
		known[center.LocationCode] = struct{}{}
	}
	added := 0
	for _, center := range derived {
		if _, ok := known[center.LocationCode]; !ok {
			merged = append(merged, center)
			added++
		}
	}
	if added > 0 {
		h.catalog.ReplaceCenters(merged)
	}

	if err := h.recorder.SaveObservations(c.Request.Context(), observations); err != nil {
		h.fail(c, err)
		return
	}
	log.Printf("series import: %d observations, %d new centers", len(observations), added)
	c.JSON(http.StatusOK, gin.H{
		"observations": len(observations),
		"new_centers":  added,
		"corrections":  report.Corrections,
	})
}

// fail maps domain errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrCenterNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNoModel):
		status = http.StatusServiceUnavailable
	case errors.Is(err, model.ErrInvalidRange),
		errors.Is(err, model.ErrInsufficientHistory),
		errors.Is(err, model.ErrEmptyDataset),
		errors.Is(err, model.ErrSchemaMismatch):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
