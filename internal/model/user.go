package model

// User types known to the client. The backend may add admin-like roles.
const (
	UserTypeCandidate = "candidate"
	UserTypeExpert    = "expert"
	UserTypeHR        = "hr"
	UserTypeAdmin     = "admin"
)

// PersonalInfo holds the optional contact and bio fields of a profile.
type PersonalInfo struct {
	Phone   string `json:"phone,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Bio     string `json:"bio,omitempty"`
}

// User is the normalized identity held by the session.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserType     string       `json:"userType"`
	Name         string       `json:"name"`
	ProfileImage string       `json:"profileImage,omitempty"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
}

// IsAdmin reports whether the user holds an admin-like role.
func (u User) IsAdmin() bool {
	switch u.UserType {
	case UserTypeAdmin, "superadmin", "super_admin":
		return true
	}
	return false
}

// RawUser is a user as the backend sends it. The identifier arrives as
// userId, _id or id depending on the endpoint.
type RawUser struct {
	UserID       string        `json:"userId,omitempty"`
	MongoID      string        `json:"_id,omitempty"`
	ID           string        `json:"id,omitempty"`
	Email        string        `json:"email"`
	UserType     string        `json:"userType"`
	Name         string        `json:"name"`
	ProfileImage string        `json:"profileImage,omitempty"`
	PersonalInfo *PersonalInfo `json:"personalInfo,omitempty"`
}

// Normalize folds the identifier variants into User.ID. userId wins over _id,
// which wins over id.
func (r RawUser) Normalize() User {
	id := r.UserID
	if id == "" {
		id = r.MongoID
	}
	if id == "" {
		id = r.ID
	}

	u := User{
		ID:           id,
		Email:        r.Email,
		UserType:     r.UserType,
		Name:         r.Name,
		ProfileImage: r.ProfileImage,
	}
	if r.PersonalInfo != nil {
		u.PersonalInfo = *r.PersonalInfo
	}
	return u
}

// Raw converts a normalized user back to wire form. Raw().Normalize() == u.
func (u User) Raw() RawUser {
	info := u.PersonalInfo
	return RawUser{
		ID:           u.ID,
		Email:        u.Email,
		UserType:     u.UserType,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		PersonalInfo: &info,
	}
}
