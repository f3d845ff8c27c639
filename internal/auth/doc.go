// Package auth provides JWT issuance/verification and password hashing.
package auth
