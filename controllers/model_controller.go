package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"schema-modeler/internal/database"
	"schema-modeler/internal/openai"
	"schema-modeler/internal/pipeline"
)

type ModelController struct {
	generator *pipeline.Generator
}

type GenerateRequest struct {
	Tables     []string `json:"tables"`
	SchemaKind string   `json:"schema_kind"`
}

type GenerateResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message,omitempty"`
	Result  *pipeline.ModelResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type TablesResponse struct {
	Status string   `json:"status"`
	Tables []string `json:"tables,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type AskRequest struct {
	Question string   `json:"question"`
	Tables   []string `json:"tables"`
}

type AskResponse struct {
	Status string `json:"status"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewModelController(generator *pipeline.Generator) *ModelController {
	return &ModelController{generator: generator}
}

// ListTables returns the table names of the active schema for selection
func (mc *ModelController) ListTables(c echo.Context) error {
	tables, err := mc.generator.ListTables(c.Request().Context())
	if err != nil {
		return c.JSON(statusForError(err), TablesResponse{
			Status: "error",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, TablesResponse{
		Status: "ok",
		Tables: tables,
	})
}

// GenerateModel runs the full generation chain for the selected tables
func (mc *ModelController) GenerateModel(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, GenerateResponse{
			Status: "error",
			Error:  "Invalid request format",
		})
	}

	if len(req.Tables) == 0 {
		return c.JSON(http.StatusBadRequest, GenerateResponse{
			Status: "error",
			Error:  "Please select at least one table",
		})
	}

	kind, err := openai.ParseSchemaKind(req.SchemaKind)
	if err != nil {
		return c.JSON(http.StatusBadRequest, GenerateResponse{
			Status: "error",
			Error:  err.Error(),
		})
	}

	c.Logger().Infof("Generating %s data model for tables: %s", kind, strings.Join(req.Tables, ", "))

	result, err := mc.generator.GenerateDataModel(c.Request().Context(), req.Tables, kind)
	if err != nil {
		return c.JSON(statusForError(err), GenerateResponse{
			Status: "error",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, GenerateResponse{
		Status: "ok",
		Result: result,
	})
}

// AskQuestion answers a free-form question about the selected tables
func (mc *ModelController) AskQuestion(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, AskResponse{
			Status: "error",
			Error:  "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, AskResponse{
			Status: "error",
			Error:  "Question cannot be empty",
		})
	}

	if len(req.Tables) == 0 {
		return c.JSON(http.StatusBadRequest, AskResponse{
			Status: "error",
			Error:  "Please select at least one table",
		})
	}

	answer, err := mc.generator.AskSchemaQuestion(c.Request().Context(), req.Question, req.Tables)
	if err != nil {
		return c.JSON(statusForError(err), AskResponse{
			Status: "error",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, AskResponse{
		Status: "ok",
		Answer: answer,
	})
}

// statusForError maps component failures to response codes: connectivity
// problems are reported as unavailable, model failures as a bad gateway,
// and everything else as a bad request
func statusForError(err error) int {
	var connErr *database.ConnectivityError
	if errors.As(err, &connErr) {
		return http.StatusServiceUnavailable
	}

	if strings.Contains(err.Error(), "model generation failed") ||
		strings.Contains(err.Error(), "model question failed") {
		return http.StatusBadGateway
	}

	return http.StatusBadRequest
}
