package auth

// Credentials is the outbound credential: either a re-encoded legacy token or
// a verified signed assertion. Representing the two as one tagged value keeps
// the forwarding pipeline to a single call site regardless of which
// authentication path produced the identity.
type Credentials struct {
	token     UserToken
	assertion string
}

func CredentialsFromUserToken(token UserToken) Credentials {
	return Credentials{token: token}
}

func CredentialsFromAssertion(assertion string) Credentials {
	return Credentials{assertion: assertion}
}

// BearerHeader renders the Authorization header value the downstream service
// can validate as representing the same principal.
func (c Credentials) BearerHeader() string {
	if c.assertion != "" {
		return "Bearer " + c.assertion
	}
	return "Bearer " + c.token.encoded()
}
