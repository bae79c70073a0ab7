package portal

// ViewerState classifies who is looking at the portal for a given browser
// scope. Transitions are driven exclusively by the viewer service: starting a
// preview moves any state to Impersonating, exiting moves back to Anonymous.
type ViewerState string

const (
	ViewerAnonymous     ViewerState = "anonymous"
	ViewerAuthenticated ViewerState = "authenticated_client"
	ViewerImpersonating ViewerState = "impersonating_client"
)

// StateOf derives the viewer state from the resolved identity
func StateOf(identity *ClientIdentity) ViewerState {
	switch {
	case identity == nil:
		return ViewerAnonymous
	case identity.IsPreview:
		return ViewerImpersonating
	default:
		return ViewerAuthenticated
	}
}
