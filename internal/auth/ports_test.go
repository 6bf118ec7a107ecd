package auth

// Compile-time checks that every store satisfies the ports it is wired to.
var (
	_ AttemptStore = (*MemoryStore)(nil)
	_ AttemptStore = (*Repository)(nil)
	_ IPLimitStore = (*Repository)(nil)
	_ TokenIssuer  = (*JWTIssuer)(nil)
	_ TokenIssuer  = (*StaticIssuer)(nil)

	_ PasswordChecker = (*DigestChecker)(nil)
	_ PasswordChecker = (*RemoteChecker)(nil)
)
