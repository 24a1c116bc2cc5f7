package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/coursereg/coursereg-go/internal/middleware"
	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/service"
)

// CourseHandler handles HTTP requests for the course catalog.
type CourseHandler struct {
	enrollment *service.EnrollmentService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(enrollment *service.EnrollmentService) *CourseHandler {
	return &CourseHandler{enrollment: enrollment}
}

// HandleList handles GET /api/courses requests.
func (h *CourseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.enrollment.ListCourses(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("listing courses failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse("Failed to load courses"))
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// HandleEnroll handles POST /api/courses/register requests.
func (h *CourseHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Unauthorized"))
		return
	}

	var req model.EnrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := h.enrollment.Enroll(r.Context(), identity.ID, req.CourseID); err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse("Course not found"))
		case errors.Is(err, service.ErrCourseFull):
			writeJSON(w, http.StatusBadRequest, errorResponse("Course full"))
		case errors.Is(err, service.ErrAlreadyEnrolled):
			writeJSON(w, http.StatusBadRequest, errorResponse("Already registered for course"))
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).
				Str("user_id", identity.ID).
				Str("course_id", req.CourseID).
				Msg("course registration failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse("Failed to register course"))
		}
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Course Registered!"})
}
