package users

// Status is the account state reported by the authentication service.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Profile is the user snapshot returned alongside a login.
type Profile struct {
	ID     string `json:"id,omitempty"`     // Identifier assigned by the service
	Name   string `json:"name,omitempty"`   // Display name
	Email  string `json:"email,omitempty"`  // Optional, students may log in by PAN number
	Status Status `json:"status,omitempty"` // Account status
}

// Clone returns a copy that does not share memory with p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (p *Profile) IsActive() bool {
	return p != nil && (p.Status == "" || p.Status == StatusActive)
}
