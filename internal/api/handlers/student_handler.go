package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitcsbs/go-tracker/internal/identity"
	"github.com/kitcsbs/go-tracker/internal/models"
	"github.com/kitcsbs/go-tracker/internal/repository"
	"github.com/kitcsbs/go-tracker/internal/service"
	"github.com/kitcsbs/go-tracker/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StudentHandler handles student and scrape API requests
type StudentHandler struct {
	service *service.ScraperService
	repo    *repository.StudentRepository
	db      *gorm.DB
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(svc *service.ScraperService, repo *repository.StudentRepository, db *gorm.DB) *StudentHandler {
	return &StudentHandler{
		service: svc,
		repo:    repo,
		db:      db,
	}
}

// GetStudentRequest represents the request to get one student
type GetStudentRequest struct {
	RollNumber string `uri:"roll" binding:"required"`
}

// CreateStudentRequest enrolls one student. Platform fields accept either a
// bare handle or a full profile link; usernames are derived on the way in.
type CreateStudentRequest struct {
	Name       string `json:"name" binding:"required"`
	RollNumber string `json:"roll_number" binding:"required"`
	Email      string `json:"email"`
	Batch      string `json:"batch"`
	Department string `json:"department"`
	Year       int    `json:"year"`
	LeetCode   string `json:"leetcode"`
	CodeChef   string `json:"codechef"`
	Codeforces string `json:"codeforces"`
	GitHub     string `json:"github"`
	Codolio    string `json:"codolio"`
}

// StudentDetailResponse is one student plus their stored platform records
type StudentDetailResponse struct {
	Student   *models.Student            `json:"student"`
	Platforms map[string]json.RawMessage `json:"platforms"`
}

// ScrapeRunResponse summarizes one batch run
type ScrapeRunResponse struct {
	RunID   string               `json:"run_id"`
	Updated int                  `json:"updated"`
	Failed  int                  `json:"failed"`
	Total   int                  `json:"total"`
	Results []models.BatchResult `json:"results"`
}

// ListStudents returns every student on the roster
// @Summary List students
// @Description List all tracked students
// @Tags students
// @Produce json
// @Success 200 {array} models.Student
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.repo.AllStudents(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list students", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve students",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, students)
}

// CreateStudent enrolls a new student
// @Summary Create student
// @Description Enroll a student, deriving platform usernames from profile links
// @Tags students
// @Accept json
// @Produce json
// @Param request body CreateStudentRequest true "Student"
// @Success 201 {object} models.Student
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	existing, err := h.repo.GetByRollNumber(c.Request.Context(), req.RollNumber)
	if err != nil {
		logger.Error("Failed to check roll number", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create student",
			Message: err.Error(),
		})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Student already exists",
			Message: "A student with this roll number is already enrolled",
		})
		return
	}

	student := &models.Student{
		Name:               req.Name,
		RollNumber:         req.RollNumber,
		Email:              req.Email,
		Batch:              req.Batch,
		Department:         req.Department,
		Year:               req.Year,
		LeetCodeUsername:   identity.DeriveUsername(models.PlatformLeetCode, req.LeetCode),
		CodeChefUsername:   identity.DeriveUsername(models.PlatformCodeChef, req.CodeChef),
		CodeforcesUsername: identity.DeriveUsername(models.PlatformCodeforces, req.Codeforces),
		GitHubUsername:     identity.DeriveUsername(models.PlatformGitHub, req.GitHub),
		CodolioUsername:    identity.DeriveUsername(models.PlatformCodolio, req.Codolio),
		IsActive:           true,
	}

	if err := h.repo.Create(c.Request.Context(), student); err != nil {
		logger.Error("Failed to create student", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create student",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, student)
}

// GetStudent returns one student with their stored platform metrics
// @Summary Get student
// @Description Get a student by roll number with per-platform metrics
// @Tags students
// @Produce json
// @Param roll path string true "Roll number"
// @Success 200 {object} StudentDetailResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/students/{roll} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	var req GetStudentRequest
	if err := c.ShouldBindUri(&req); err != nil {
		logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	student, err := h.repo.GetByRollNumber(c.Request.Context(), req.RollNumber)
	if err != nil {
		logger.Error("Failed to get student", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve student",
			Message: err.Error(),
		})
		return
	}
	if student == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Student not found",
			Message: "No student exists with this roll number",
		})
		return
	}

	snapshots, err := h.repo.SnapshotsByStudent(c.Request.Context(), student.ID)
	if err != nil {
		logger.Error("Failed to get snapshots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve platform metrics",
			Message: err.Error(),
		})
		return
	}

	platforms := make(map[string]json.RawMessage, len(snapshots))
	for _, snapshot := range snapshots {
		platforms[snapshot.Platform] = json.RawMessage(snapshot.Metrics)
	}

	c.JSON(http.StatusOK, StudentDetailResponse{
		Student:   student,
		Platforms: platforms,
	})
}

// RunScrape runs a full batch scrape
// @Summary Run batch scrape
// @Description Scrape every active student across all platforms
// @Tags scrape
// @Produce json
// @Success 200 {object} ScrapeRunResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/scrape/run [post]
func (h *StudentHandler) RunScrape(c *gin.Context) {
	report, err := h.service.RunBatch(c.Request.Context())
	if err != nil {
		logger.Error("Batch scrape failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Batch scrape failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ScrapeRunResponse{
		RunID:   report.RunID,
		Updated: report.Updated,
		Failed:  report.Failed,
		Total:   report.Total,
		Results: report.Results,
	})
}

// RefreshCodeChefContests re-reads CodeChef contest participation
// @Summary Refresh CodeChef contests
// @Description Patch contest counters in stored CodeChef snapshots
// @Tags scrape
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/scrape/codechef-contests [post]
func (h *StudentHandler) RefreshCodeChefContests(c *gin.Context) {
	updated, err := h.service.RefreshCodeChefContests(c.Request.Context())
	if err != nil {
		logger.Error("CodeChef contest refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Contest refresh failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// GetStats retrieves tracker statistics
// @Summary Get service statistics
// @Description Get statistics about the tracker database
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/stats [get]
func (h *StudentHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to retrieve statistics",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck performs health checks
// @Summary Health check
// @Description Check database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *StudentHandler) HealthCheck(c *gin.Context) {
	components := make(map[string]bool)

	healthy := true
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		healthy = false
	}
	components["database"] = healthy

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthResponse{
		Status:     map[bool]string{true: "healthy", false: "unhealthy"}[healthy],
		Components: components,
	})
}

// Response types

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}
