package models

import "strings"

// CheckRequest is the body of a not-following-back check.
type CheckRequest struct {
	Username     string `json:"username,omitempty" doc:"Instagram login username"`
	Password     string `json:"password,omitempty" doc:"Instagram login password"`
	ClientUser   string `json:"clientuser,omitempty" doc:"Profile to inspect (defaults to username)"`
	IncludeLists bool   `json:"includeLists,omitempty" doc:"Return the full following and followers lists"`
	Screenshot   bool   `json:"screenshot,omitempty" doc:"Attach a base64 PNG to error responses"`
}

// Target returns the profile whose lists are scraped.
func (r CheckRequest) Target() string {
	if u := strings.TrimSpace(r.ClientUser); u != "" {
		return u
	}
	return strings.TrimSpace(r.Username)
}

// Credentials returns the login credentials carried by the request.
func (r CheckRequest) Credentials() Credentials {
	return Credentials{Username: strings.TrimSpace(r.Username), Password: r.Password}
}

// HumaCheckRequest wraps CheckRequest for Huma API.
type HumaCheckRequest struct {
	Body CheckRequest
}

// RunsRequest lists recent journal rows.
type RunsRequest struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"200"`
}
