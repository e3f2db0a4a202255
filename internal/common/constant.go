package common

// CSRFTokenHeaderName is the HTTP header carrying the anti-forgery token on
// mutating requests.
const CSRFTokenHeaderName = "x-csrf-token"

// SessionCookieSuffix identifies the backend session cookie among the
// transport cookies.
const SessionCookieSuffix = ".sid"
