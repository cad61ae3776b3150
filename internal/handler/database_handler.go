package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/notabase/internal/middleware"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/pkg/logger"
	"github.com/suteetoe/notabase/prometheus"
	"go.uber.org/zap"
)

// DatabaseHandler exposes the schema registry: databases and their fields.
type DatabaseHandler struct {
	schema *service.SchemaService
}

// NewDatabaseHandler wires the database handler.
func NewDatabaseHandler(schema *service.SchemaService) *DatabaseHandler {
	return &DatabaseHandler{schema: schema}
}

// CreateDatabase handles database creation.
func (h *DatabaseHandler) CreateDatabase(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDatabaseOperation("create")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse database creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	db, err := h.schema.CreateDatabase(c.Request().Context(), middleware.GetPrincipal(c), req.Name)
	if err != nil {
		log.Error("Failed to create database", zap.String("name", req.Name), zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Database created", zap.Uint("database_id", db.ID), zap.String("name", db.Name))
	return c.JSON(http.StatusCreated, db)
}

// ListDatabases returns the tenant's live databases.
func (h *DatabaseHandler) ListDatabases(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	dbs, err := h.schema.ListDatabases(c.Request().Context(), middleware.GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dbs)
}

// GetDatabase returns a single database by id.
func (h *DatabaseHandler) GetDatabase(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	db, err := h.schema.GetDatabase(c.Request().Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, db)
}

// UpdateDatabase renames a database.
func (h *DatabaseHandler) UpdateDatabase(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDatabaseOperation("update")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse database update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	db, err := h.schema.UpdateDatabase(c.Request().Context(), middleware.GetPrincipal(c), id, req.Name)
	if err != nil {
		log.Error("Failed to update database", zap.Uint("database_id", id), zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Database updated", zap.Uint("database_id", db.ID), zap.String("name", db.Name))
	return c.JSON(http.StatusOK, db)
}

// DeleteDatabase soft-deletes a database.
func (h *DatabaseHandler) DeleteDatabase(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDatabaseOperation("delete")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.schema.DeleteDatabase(c.Request().Context(), middleware.GetPrincipal(c), id); err != nil {
		log.Error("Failed to delete database", zap.Uint("database_id", id), zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Database deleted", zap.Uint("database_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "database deleted"})
}

// AddField appends a field to the database's schema.
func (h *DatabaseHandler) AddField(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDatabaseOperation("add_field")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}

	var spec service.FieldSpec
	if err := c.Bind(&spec); err != nil {
		log.Error("Failed to parse field spec", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	db, err := h.schema.AddField(c.Request().Context(), middleware.GetPrincipal(c), id, spec)
	if err != nil {
		log.Error("Failed to add field",
			zap.Uint("database_id", id),
			zap.String("field", spec.Name),
			zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Field added", zap.Uint("database_id", db.ID), zap.String("field", spec.Name))
	return c.JSON(http.StatusOK, db)
}

// UpdateField replaces a field's attributes, keeping its id and position.
func (h *DatabaseHandler) UpdateField(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDatabaseOperation("update_field")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}
	fieldID := c.Param("fieldId")

	var spec service.FieldSpec
	if err := c.Bind(&spec); err != nil {
		log.Error("Failed to parse field spec", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	db, err := h.schema.UpdateField(c.Request().Context(), middleware.GetPrincipal(c), id, fieldID, spec)
	if err != nil {
		log.Error("Failed to update field",
			zap.Uint("database_id", id),
			zap.String("field_id", fieldID),
			zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Field updated", zap.Uint("database_id", db.ID), zap.String("field", spec.Name))
	return c.JSON(http.StatusOK, db)
}

// RemoveField removes a field from the schema.
func (h *DatabaseHandler) RemoveField(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordDatabaseOperation("remove_field")

	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid database id"})
	}
	fieldID := c.Param("fieldId")

	defer prometheus.TrackDBOperation("update")(time.Now())
	db, err := h.schema.RemoveField(c.Request().Context(), middleware.GetPrincipal(c), id, fieldID)
	if err != nil {
		log.Error("Failed to remove field",
			zap.Uint("database_id", id),
			zap.String("field_id", fieldID),
			zap.Error(err))
		return writeError(c, err)
	}

	log.Info("Field removed", zap.Uint("database_id", db.ID), zap.String("field_id", fieldID))
	return c.JSON(http.StatusOK, db)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
