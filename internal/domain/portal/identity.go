package portal

// Placeholder identity used when a preview targets a client id that does not
// resolve in the directory. Admins land on a generic preview instead of an
// error page.
const (
	PlaceholderName  = "Preview User"
	PlaceholderEmail = "preview@example.com"
)

// ClientIdentity is the identity a portal request is viewed as. It is either
// a real client session or an admin preview of a client.
type ClientIdentity struct {
	ClientID  string `json:"clientId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	IsPreview bool   `json:"isPreview"`
}

// AsPreview returns a preview copy of the identity. Contact details the
// directory resolved, phone included, carry over unchanged.
func (i *ClientIdentity) AsPreview() *ClientIdentity {
	preview := *i
	preview.IsPreview = true
	return &preview
}

// NewAuthenticatedIdentity creates the identity of a real, logged-in client
func NewAuthenticatedIdentity(clientID, name, email string) *ClientIdentity {
	return &ClientIdentity{
		ClientID: clientID,
		Name:     name,
		Email:    email,
	}
}

// NewPreviewIdentity creates the identity an admin views the portal as
func NewPreviewIdentity(clientID, name, email string) *ClientIdentity {
	return &ClientIdentity{
		ClientID:  clientID,
		Name:      name,
		Email:     email,
		IsPreview: true,
	}
}

// NewPlaceholderIdentity creates a preview identity for a client id the
// directory could not resolve
func NewPlaceholderIdentity(clientID string) *ClientIdentity {
	return &ClientIdentity{
		ClientID:  clientID,
		Name:      PlaceholderName,
		Email:     PlaceholderEmail,
		IsPreview: true,
	}
}
