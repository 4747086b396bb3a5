package user

import "time"

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Premium      bool       `json:"premium"`
	CourseType   CourseType `json:"courseType,omitempty"`
	Semester     int        `json:"semester,omitempty"` // 0 = not set yet
	College      string     `json:"college,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
