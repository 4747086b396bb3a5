package user

import (
	"errors"
	"strconv"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type CourseType string

const (
	CourseEngineering CourseType = "engineering"
	CourseDiploma     CourseType = "diploma"
)

var (
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnknownCourseType  = errors.New("unknown course type")
	ErrNoSemesterDigits   = errors.New("semester label contains no digits")
	ErrSemesterOutOfRange = errors.New("semester out of range for course type")
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	}

	return "", ErrUnknownRole
}

func ParseCourseType(s string) (CourseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(CourseEngineering):
		return CourseEngineering, nil
	case string(CourseDiploma):
		return CourseDiploma, nil
	}

	return "", ErrUnknownCourseType
}

// MaxSemester reports the highest valid semester for the course type.
func (c CourseType) MaxSemester() int {
	switch c {
	case CourseDiploma:
		return 6
	case CourseEngineering:
		return 8
	}

	return 0
}

// ParseSemester extracts the leading run of digits from a free-form label,
// so "5th Semester" and "5" both parse to 5. Clients send all sorts of
// labels here; anything without digits is rejected.
func ParseSemester(label string) (int, error) {
	label = strings.TrimSpace(label)

	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}

	if i == 0 {
		return 0, ErrNoSemesterDigits
	}

	n, err := strconv.Atoi(label[:i])

	if err != nil {
		return 0, ErrNoSemesterDigits
	}

	return n, nil
}

// ValidateSemester enforces the per-program bound: 1..6 for diploma,
// 1..8 for engineering.
func ValidateSemester(course CourseType, semester int) error {
	max := course.MaxSemester()

	if max == 0 {
		return ErrUnknownCourseType
	}

	if semester < 1 || semester > max {
		return ErrSemesterOutOfRange
	}

	return nil
}
