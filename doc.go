// Package tourbase implements the identity, credential, and access-control
// core of the tourbase API: signup and login, stateless JWT session issuance
// and verification, a hashed one-time password-reset flow, role-gated route
// protection, and the error classification boundary every request terminates
// in.
package tourbase
