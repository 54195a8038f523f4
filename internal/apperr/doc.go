// Package apperr defines the error taxonomy shared by every workspace component.
//
// Three kinds of failure leave a component:
//   - AuthError: credential acquisition or token validation failed
//   - APIError: a Google API returned an error; the message carries provider detail
//   - ValidationError: an argument was missing or malformed and no network call was made
//
// FromGoogle converts errors returned by google.golang.org/api clients into APIError
// values, and KindOf maps any error onto a Kind for result envelopes and metric labels.
package apperr
