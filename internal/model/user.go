// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// WHY int64 FOR THE ID?
// The primary key is a SQLite INTEGER PRIMARY KEY AUTOINCREMENT, which is a
// 64-bit rowid. Using int64 on the Go side means no conversion at the
// repository boundary and no overflow however long the instance lives.
//
// CREDENTIALS ARE WRITE-ONLY:
// PasswordHash is a bcrypt hash — it is never rendered back to any page or
// serialized into a response (note the json:"-" tags). The same applies to the
// GitHub OAuth secret and token: they only ever flow DOWN into the database and
// OUT to GitHub's endpoints, never back to the browser.
//
// The three GitHub fields are empty strings until the user links an OAuth app
// on the /link-github page. Empty string (not *string) keeps the zero value
// meaningful: "" simply means "not linked yet".
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"` // unique, case-sensitive
	PasswordHash string `json:"-"`

	GitHubClientID     string `json:"-"` // OAuth app client id (per user)
	GitHubClientSecret string `json:"-"` // OAuth app client secret (per user)
	GitHubToken        string `json:"-"` // access token from the OAuth exchange
}

// HasGitHubCredentials reports whether the user has linked an OAuth app.
// Required before the authorization redirect can be built.
func (u *User) HasGitHubCredentials() bool {
	return u.GitHubClientID != "" && u.GitHubClientSecret != ""
}

// HasGitHubToken reports whether the OAuth exchange has completed.
// Required before repositories can be fetched.
func (u *User) HasGitHubToken() bool {
	return u.GitHubToken != ""
}
