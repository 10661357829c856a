package common

// AuthorizationHeaderName carries the bearer token used for upload attribution.
const AuthorizationHeaderName = "Authorization"

// AnonymousUploader is recorded as uploadedBy when a request carries no token.
const AnonymousUploader = "anonymous"

// SessionKeyPrefix is the object-store prefix every artifact key lives under.
const SessionKeyPrefix = "sessions/"
