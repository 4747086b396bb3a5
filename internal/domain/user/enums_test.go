package user

import (
	"errors"
	"testing"
)

func TestParseCourseType(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    CourseType
		wantErr error
	}{
		{name: "engineering", in: "engineering", want: CourseEngineering},
		{name: "diploma", in: "diploma", want: CourseDiploma},
		{name: "mixed case with spaces", in: "  Engineering ", want: CourseEngineering},
		{name: "unknown", in: "phd", wantErr: ErrUnknownCourseType},
		{name: "empty", in: "", wantErr: ErrUnknownCourseType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCourseType(tc.in)

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParseCourseType(%q) err = %v, want %v", tc.in, err, tc.wantErr)
			}

			if err == nil && got != tc.want {
				t.Fatalf("ParseCourseType(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseSemester(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr error
	}{
		{name: "bare number", in: "5", want: 5},
		{name: "label with suffix", in: "5th Semester", want: 5},
		{name: "leading spaces", in: "  3rd Sem", want: 3},
		{name: "multi digit", in: "10", want: 10},
		{name: "no digits", in: "Semester", wantErr: ErrNoSemesterDigits},
		{name: "digits not leading", in: "Sem 5", wantErr: ErrNoSemesterDigits},
		{name: "empty", in: "", wantErr: ErrNoSemesterDigits},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSemester(tc.in)

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParseSemester(%q) err = %v, want %v", tc.in, err, tc.wantErr)
			}

			if err == nil && got != tc.want {
				t.Fatalf("ParseSemester(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateSemester(t *testing.T) {
	tests := []struct {
		name     string
		course   CourseType
		semester int
		wantErr  error
	}{
		{name: "diploma lower bound", course: CourseDiploma, semester: 1},
		{name: "diploma upper bound", course: CourseDiploma, semester: 6},
		{name: "diploma above bound", course: CourseDiploma, semester: 7, wantErr: ErrSemesterOutOfRange},
		{name: "engineering upper bound", course: CourseEngineering, semester: 8},
		{name: "engineering above bound", course: CourseEngineering, semester: 9, wantErr: ErrSemesterOutOfRange},
		{name: "zero semester", course: CourseEngineering, semester: 0, wantErr: ErrSemesterOutOfRange},
		{name: "negative semester", course: CourseDiploma, semester: -1, wantErr: ErrSemesterOutOfRange},
		{name: "unknown course", course: CourseType("phd"), semester: 1, wantErr: ErrUnknownCourseType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSemester(tc.course, tc.semester)

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateSemester(%q, %d) = %v, want %v", tc.course, tc.semester, err, tc.wantErr)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("superuser"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("ParseRole(superuser) err = %v, want ErrUnknownRole", err)
	}

	got, err := ParseRole(" Admin ")

	if err != nil {
		t.Fatalf("ParseRole(Admin) err = %v", err)
	}

	if got != RoleAdmin {
		t.Fatalf("ParseRole(Admin) = %q, want %q", got, RoleAdmin)
	}
}
