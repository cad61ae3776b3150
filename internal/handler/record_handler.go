package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/notabase/internal/middleware"
	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/pkg/logger"
	"github.com/suteetoe/notabase/prometheus"
	"go.uber.org/zap"
)

// RecordHandler exposes record CRUD and the query endpoint.
type RecordHandler struct {
	records *service.RecordService
}

// NewRecordHandler wires the record handler.
func NewRecordHandler(records *service.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// CreateRecord stores a new record in a database.
func (h *RecordHandler) CreateRecord(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecordOperation("create")

	databaseID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}

	var req struct {
		Values model.ValueMap `json:"values"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse record creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	rec, err := h.records.CreateRecord(c.Request().Context(), middleware.GetPrincipal(c), databaseID, req.Values)
	if err != nil {
		log.Error("Failed to create record", zap.Uint("database_id", databaseID), zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Record created",
		zap.Uint("record_id", rec.ID),
		zap.Uint("database_id", rec.DatabaseID))
	return c.JSON(http.StatusCreated, rec)
}

// GetRecord returns a single record by id.
func (h *RecordHandler) GetRecord(c echo.Context) error {
	prometheus.RecordRecordOperation("get")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid record id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	rec, err := h.records.GetRecord(c.Request().Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// UpdateRecord merges values into an existing record.
func (h *RecordHandler) UpdateRecord(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecordOperation("update")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid record id"})
	}

	var req struct {
		Values model.ValueMap `json:"values"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse record update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	rec, err := h.records.UpdateRecord(c.Request().Context(), middleware.GetPrincipal(c), id, req.Values)
	if err != nil {
		log.Error("Failed to update record", zap.Uint("record_id", id), zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Record updated", zap.Uint("record_id", rec.ID))
	return c.JSON(http.StatusOK, rec)
}

// DeleteRecord soft-deletes a record.
func (h *RecordHandler) DeleteRecord(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecordOperation("delete")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid record id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.records.DeleteRecord(c.Request().Context(), middleware.GetPrincipal(c), id); err != nil {
		log.Error("Failed to delete record", zap.Uint("record_id", id), zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Record deleted", zap.Uint("record_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "record deleted"})
}

// QueryRecords runs the filter/search/sort/pagination pipeline over a
// database's records.
func (h *RecordHandler) QueryRecords(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecordOperation("query")

	databaseID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}

	var req struct {
		Search string                 `json:"search"`
		Filter map[string]interface{} `json:"filter"`
		Sort   *struct {
			Field string `json:"field"`
			Order string `json:"order"`
		} `json:"sort"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse record query", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	in := service.ListRecordsInput{
		Search: req.Search,
		Filter: req.Filter,
		Page:   req.Page,
		Limit:  req.Limit,
	}
	if req.Sort != nil {
		in.SortField = req.Sort.Field
		in.SortOrder = req.Sort.Order
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	views, err := h.records.ListRecords(c.Request().Context(), middleware.GetPrincipal(c), databaseID, in)
	if err != nil {
		log.Error("Record query failed", zap.Uint("database_id", databaseID), zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"records": views, "count": len(views)})
}
