package domain

// SIPEndpoint is what the browser softphone needs to register.
type SIPEndpoint struct {
	URI      string `json:"sipUri"`
	Password string `json:"password"`
	Realm    string `json:"realm,omitempty"`
}

// Provision is the result of a first sign-in: the user's message/call
// number, their SIP identity and the signaling domain it lives in.
// Stored on the session so further tabs sign in without vendor calls.
type Provision struct {
	PhoneNumber string      `json:"phoneNumber"`
	Domain      string      `json:"domain"`
	Endpoint    SIPEndpoint `json:"endpoint"`
}
