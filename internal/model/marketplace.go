package model

import "time"

// Session booking statuses.
const (
	SessionPending   = "pending"
	SessionConfirmed = "confirmed"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// ExpertProfile is an expert as the marketplace backend exposes it.
type ExpertProfile struct {
	ID         string   `json:"_id"`
	UserID     string   `json:"userId"`
	Name       string   `json:"name"`
	Email      string   `json:"email,omitempty"`
	Expertise  []string `json:"expertise,omitempty"`
	Experience int      `json:"experience,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Price      float64  `json:"price,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Photo      string   `json:"photo,omitempty"`
}

// SessionBooking is an interview session between a candidate and an expert.
type SessionBooking struct {
	ID          string    `json:"_id"`
	ExpertID    string    `json:"expertId"`
	CandidateID string    `json:"candidateId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	MeetingLink string    `json:"meetingLink,omitempty"`
	Price       float64   `json:"price,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// BookSessionRequest asks the backend to reserve a slot with an expert.
type BookSessionRequest struct {
	ExpertID    string    `json:"expertId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Notes       string    `json:"notes,omitempty"`
}

// JoinSessionResponse carries the meeting link for a session about to start.
type JoinSessionResponse struct {
	MeetingLink string `json:"meetingLink"`
}

// Notification is a user-facing notification.
type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Certification is awarded after a completed session.
type Certification struct {
	ID             string    `json:"_id"`
	Title          string    `json:"title"`
	SessionID      string    `json:"sessionId,omitempty"`
	Score          float64   `json:"score,omitempty"`
	IssuedAt       time.Time `json:"issuedAt"`
	CertificateURL string    `json:"certificateUrl,omitempty"`
}

// ProfileUpdateRequest updates the caller's own profile.
type ProfileUpdateRequest struct {
	Name         string        `json:"name,omitempty"`
	ProfileImage string        `json:"profileImage,omitempty"`
	PersonalInfo *PersonalInfo `json:"personalInfo,omitempty"`
}

// ExpertProfileResponse accepts the expert profile wrapped in "expert" or flat.
type ExpertProfileResponse struct {
	Expert *ExpertProfile `json:"expert,omitempty"`
	ExpertProfile
}

// Unwrap returns the profile regardless of envelope.
func (p ExpertProfileResponse) Unwrap() ExpertProfile {
	if p.Expert != nil {
		return *p.Expert
	}
	return p.ExpertProfile
}
