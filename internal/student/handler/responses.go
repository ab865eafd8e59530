package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"registrar/internal/student/models"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
)

// Response is the envelope every student endpoint answers with. Data is
// present only on success.
type Response struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *StudentResponse `json:"data,omitempty"`
}

// StudentResponse is the wire shape of a stored student record. Optional
// fields serialize as null when absent; dates render as YYYY-MM-DD and
// timestamps as RFC 3339.
type StudentResponse struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	DateOfBirth    *string   `json:"date_of_birth"`
	Address        *string   `json:"address"`
	EnrollmentDate string    `json:"enrollment_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func newStudentResponse(s *models.Student) *StudentResponse {
	resp := &StudentResponse{
		ID:             s.ID,
		StudentID:      s.StudentID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		FullName:       s.FullName(),
		Email:          s.Email,
		EnrollmentDate: s.EnrollmentDate.Format(dateLayout),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Phone != "" {
		resp.Phone = &s.Phone
	}
	if s.DateOfBirth != nil {
		dob := s.DateOfBirth.Format(dateLayout)
		resp.DateOfBirth = &dob
	}
	if s.Address != "" {
		resp.Address = &s.Address
	}
	return resp
}

func writeCreated(w http.ResponseWriter, student *models.Student) {
	httputil.WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: fmt.Sprintf("Student %s created successfully", student.FullName()),
		Data:    newStudentResponse(student),
	})
}

func writeFailure(w http.ResponseWriter, status int, reason string) {
	httputil.WriteJSON(w, status, Response{
		Success: false,
		Message: "Failed to create student: " + reason,
	})
}

// writeRegisterError maps a service error onto the response envelope. The
// coded message is the caller-facing reason; uncoded errors fall back to the
// generic storage message so no internals leak.
func writeRegisterError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		writeFailure(w, http.StatusInternalServerError, "database error creating student")
		return
	}
	writeFailure(w, httputil.StatusForCode(de.Code), de.Message)
}
