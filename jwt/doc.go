// Package jwt signs and verifies license tokens on top of github.com/golang-jwt/jwt/v5.
//
// Functions in this package are stateless: key material is passed per call and
// nothing is cached between calls. RS256 keys go through [keys.Normalize] before
// use; HS256 secrets are used verbatim.
//
// Parsing and expiration are deliberately separate. [Parse] only fails when the
// token cannot be trusted (bad structure, signature, algorithm or key); an
// expired but authentic token parses fine and reports IsValid() == false.
package jwt
