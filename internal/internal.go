package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "gl_access_token"
)
