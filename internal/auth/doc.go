// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package auth provides credential verification and access token sessions.
//
// # Components
//
//   - CredentialStore - read-only lookup of a credential by email
//   - PasswordHasher - argon2id hashing, with bcrypt accepted for legacy hashes
//   - TokenCache - access token to user mapping with a per-entry TTL
//   - Service - login, token issue, resolve and revoke
//
// # Errors
//
// Every error returned by Service wraps one of ErrUnauthorized, ErrStorage,
// ErrCache or ErrConversion. An unknown email, a wrong password and a
// missing, expired or revoked token all surface as ErrUnauthorized and are
// deliberately indistinguishable to callers.
//
// Services are created with NewAuthService, which validates dependencies.
package auth
