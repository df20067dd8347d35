// Package mock provides an httptest-backed authorization service that
// facilitates unit testing of the JWT-bearer credential lifecycle.
//
// The mock speaks the token exchange and revocation endpoints without any
// external network dependency, mints real signed JWT access tokens, and lets
// tests script failure responses or override handlers entirely.
package mock
