package model

// Course is a catalog entry with a seat counter.
type Course struct {
	ID          string `json:"_id"`
	Code        string `json:"code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Credits     int    `json:"credits" validate:"gt=0"`
	Instructor  string `json:"instructor" validate:"required"`
	Schedule    string `json:"schedule" validate:"required"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	Enrolled    int    `json:"enrolled" validate:"gte=0,ltefield=Capacity"`
}

// IsFull reports whether every seat is taken.
func (c *Course) IsFull() bool {
	return c.Enrolled >= c.Capacity
}

// EnrollRequest represents a course registration submission.
type EnrollRequest struct {
	CourseID string `json:"courseId" form:"courseId"`
}
