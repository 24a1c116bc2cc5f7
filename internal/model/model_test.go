package model

import (
	"testing"
	"time"
)

func TestUserHasCourse(t *testing.T) {
	u := &User{RegisteredCourses: []string{"c1", "c2"}}

	if !u.HasCourse("c2") {
		t.Error("HasCourse(c2) = false, want true")
	}
	if u.HasCourse("c3") {
		t.Error("HasCourse(c3) = true, want false")
	}
	if (&User{}).HasCourse("c1") {
		t.Error("HasCourse on empty list = true, want false")
	}
}

func TestCourseIsFull(t *testing.T) {
	tests := []struct {
		capacity, enrolled int
		want               bool
	}{
		{capacity: 2, enrolled: 0, want: false},
		{capacity: 2, enrolled: 1, want: false},
		{capacity: 2, enrolled: 2, want: true},
		{capacity: 0, enrolled: 0, want: true},
	}

	for _, tt := range tests {
		c := &Course{Capacity: tt.capacity, Enrolled: tt.enrolled}
		if got := c.IsFull(); got != tt.want {
			t.Errorf("IsFull() capacity=%d enrolled=%d = %v, want %v", tt.capacity, tt.enrolled, got, tt.want)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	if s.Expired(now) {
		t.Error("Expired() before expiry = true, want false")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Error("Expired() at expiry = false, want true")
	}
}
